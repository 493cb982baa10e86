package model

// CourseEntry 单个学生的一条课程安排（一行课表文本解析而来）
//
// 生命周期仅限一次上传批次：解析时构造，之后只读。
type CourseEntry struct {
	Student    string `json:"student"`
	CourseName string `json:"course_name"`
	Location   string `json:"location"`   // 可为空（未知）
	Weekday    int    `json:"weekday"`    // 0=周一 … 6=周日
	TimeRange  string `json:"time_range"` // HH:MM-HH:MM
	WeekStart  int    `json:"week_start"`
	WeekEnd    int    `json:"week_end"`
}

// IncludesWeek 判断第 week 周是否在该课程的周次范围内（两端包含）
func (e CourseEntry) IncludesWeek(week int) bool {
	return e.WeekStart <= week && week <= e.WeekEnd
}

// CellText 课程在周视图单元格中的展示文本
func (e CourseEntry) CellText() string {
	text := e.Student + "：" + e.CourseName
	if e.Location != "" {
		text += "（" + e.Location + "）"
	}
	return text
}
