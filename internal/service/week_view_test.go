package service

import (
	"testing"
	"time"

	"github.com/uniooo/pdf-calendar/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeWeekNumber(t *testing.T) {
	start := date("2024-02-26")
	tests := []struct {
		ref  string
		want int
	}{
		{"2024-02-26", 1},
		{"2024-03-03", 1},
		{"2024-03-04", 2},
		{"2024-03-11", 3},
		{"2024-03-17", 3},
		{"2024-02-25", 1},
		{"2023-09-01", 1},
		{"2024-06-30", 18},
	}
	for _, tt := range tests {
		if got := ComputeWeekNumber(start, date(tt.ref)); got != tt.want {
			t.Errorf("ComputeWeekNumber(2024-02-26, %s) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}

func TestComputeWeekNumber_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	start := time.Date(2024, 2, 26, 23, 59, 0, 0, loc)
	ref := time.Date(2024, 3, 4, 0, 1, 0, 0, loc)
	if got := ComputeWeekNumber(start, ref); got != 2 {
		t.Errorf("跨日边界应按日历日计算，实际第 %d 周", got)
	}
}

func TestWeekDate(t *testing.T) {
	// 2024-02-26 是周一
	if got := WeekDate(date("2024-02-26"), 3, 1); !got.Equal(date("2024-03-12")) {
		t.Errorf("第 3 周周二应为 2024-03-12，实际 %s", got.Format("2006-01-02"))
	}
	// 2024-02-28 是周三：第 1 周从周三到下周二
	if got := WeekDate(date("2024-02-28"), 1, 0); !got.Equal(date("2024-03-04")) {
		t.Errorf("起始日为周三时第 1 周周一应为 2024-03-04，实际 %s", got.Format("2006-01-02"))
	}
	if got := WeekDate(date("2024-02-28"), 1, 2); !got.Equal(date("2024-02-28")) {
		t.Errorf("起始日为周三时第 1 周周三应为起始日，实际 %s", got.Format("2006-01-02"))
	}
}

func TestFilterByStudents(t *testing.T) {
	entries := []model.CourseEntry{
		{Student: "张三", CourseName: "A"},
		{Student: "李四", CourseName: "B"},
		{Student: "张三", CourseName: "C"},
	}

	got := FilterByStudents(entries, []string{"张三"})
	if len(got) != 2 || got[0].CourseName != "A" || got[1].CourseName != "C" {
		t.Errorf("FilterByStudents = %+v", got)
	}
	if got := FilterByStudents(entries, nil); len(got) != 0 {
		t.Errorf("未选择学生时应为空: %+v", got)
	}
	if got := FilterByStudents(entries, []string{"王五"}); len(got) != 0 {
		t.Errorf("不存在的学生应匹配为空: %+v", got)
	}
}

func TestBuildWeekView_MergesSameCell(t *testing.T) {
	entries := []model.CourseEntry{
		{Student: "张三", CourseName: "高等数学", Location: "B203", Weekday: 1, TimeRange: "10:00-11:30", WeekStart: 1, WeekEnd: 16},
		{Student: "李四", CourseName: "大学英语", Weekday: 1, TimeRange: "10:00-11:30", WeekStart: 1, WeekEnd: 8},
		{Student: "张三", CourseName: "体育", Weekday: 4, TimeRange: "08:00-09:40", WeekStart: 1, WeekEnd: 16},
	}

	grid := BuildWeekView(entries, 3)
	if grid.Week != 3 {
		t.Errorf("Week = %d", grid.Week)
	}
	if len(grid.Rows) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(grid.Rows))
	}
	if grid.Rows[0].TimeRange != "08:00-09:40" || grid.Rows[1].TimeRange != "10:00-11:30" {
		t.Errorf("行应按时间排序: %s, %s", grid.Rows[0].TimeRange, grid.Rows[1].TimeRange)
	}

	want := "张三：高等数学（B203）\n李四：大学英语"
	if got := grid.Rows[1].Cells[1]; got != want {
		t.Errorf("同一单元格应按出现顺序换行拼接: %q, want %q", got, want)
	}
	if got := grid.Rows[0].Cells[4]; got != "张三：体育" {
		t.Errorf("周五 08:00 单元格 = %q", got)
	}
	for d, cell := range grid.Rows[0].Cells {
		if d != 4 && cell != model.EmptyCell {
			t.Errorf("无课单元格应为 %q，实际 [%d]=%q", model.EmptyCell, d, cell)
		}
	}
}

func TestBuildWeekView_WeekFilter(t *testing.T) {
	entries := []model.CourseEntry{
		{Student: "张三", CourseName: "前八周", Weekday: 0, TimeRange: "08:00-09:40", WeekStart: 1, WeekEnd: 8},
		{Student: "张三", CourseName: "后八周", Weekday: 0, TimeRange: "10:00-11:40", WeekStart: 9, WeekEnd: 16},
	}

	grid := BuildWeekView(entries, 9)
	if len(grid.Rows) != 1 {
		t.Fatalf("第 9 周只应有后八周课程的时间段，实际 %d 行", len(grid.Rows))
	}
	if grid.Rows[0].TimeRange != "10:00-11:40" || grid.Rows[0].Cells[0] != "张三：后八周" {
		t.Errorf("第 9 周行内容不正确: %+v", grid.Rows[0])
	}
}

func TestBuildWeekView_EmptyGrid(t *testing.T) {
	entries := []model.CourseEntry{
		{Student: "张三", CourseName: "A", Weekday: 0, TimeRange: "08:00-09:40", WeekStart: 1, WeekEnd: 2},
	}

	grid := BuildWeekView(entries, 5)
	if !grid.IsEmpty() {
		t.Errorf("无匹配时应为零行网格: %+v", grid.Rows)
	}
	if grid.Rows == nil {
		t.Error("零行网格的 Rows 应为空切片而非 nil，便于 JSON 输出 []")
	}

	if !BuildWeekView(nil, 1).IsEmpty() {
		t.Error("空输入应产生空网格")
	}
}

func TestBuildWeekView_SkipsOutOfRangeWeekday(t *testing.T) {
	entries := []model.CourseEntry{
		{Student: "张三", CourseName: "A", Weekday: 7, TimeRange: "08:00-09:40", WeekStart: 1, WeekEnd: 2},
		{Student: "张三", CourseName: "B", Weekday: -1, TimeRange: "08:00-09:40", WeekStart: 1, WeekEnd: 2},
	}
	if !BuildWeekView(entries, 1).IsEmpty() {
		t.Error("非法星期的课程应被忽略")
	}
}
