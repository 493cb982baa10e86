package model

// DayNames 周视图固定的 7 个星期列，下标与 CourseEntry.Weekday 一致
var DayNames = [7]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// TimeSlotHeader 周视图首列表头
const TimeSlotHeader = "时间段"

// EmptyCell 无课单元格占位
const EmptyCell = "无"

// WeekRow 周视图中的一行：一个时间段 × 7 天
type WeekRow struct {
	TimeRange string    `json:"time_range"`
	Cells     [7]string `json:"cells"`
}

// WeekGrid 按周筛选后的课程网格
//
// Rows 为空表示筛选后没有任何课程，区别于"有行但单元格均为无课"。
type WeekGrid struct {
	Week int       `json:"week"`
	Rows []WeekRow `json:"rows"`
}

// IsEmpty 筛选结果是否没有任何课程
func (g WeekGrid) IsEmpty() bool {
	return len(g.Rows) == 0
}
