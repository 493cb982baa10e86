package service

import (
	"slices"
	"sort"
	"time"

	"github.com/uniooo/pdf-calendar/internal/model"
)

// ComputeWeekNumber 计算参考日期所在的教学周（1-based）
//
// 只比较日历日期；参考日期早于学期起始时返回第 1 周。
func ComputeWeekNumber(semesterStart, reference time.Time) int {
	days := daysBetween(semesterStart, reference)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

// WeekDate 返回第 week 周中 weekday（0=周一）对应的日期
//
// 教学周按学期起始日起每 7 天划分，起始日不必是周一。
func WeekDate(semesterStart time.Time, week, weekday int) time.Time {
	start := civilDate(semesterStart).AddDate(0, 0, (week-1)*7)
	offset := (weekday - mondayIndex(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, offset)
}

// FilterByStudents 保留属于所选学生的课程，保持原有顺序
func FilterByStudents(entries []model.CourseEntry, students []string) []model.CourseEntry {
	result := make([]model.CourseEntry, 0, len(entries))
	for _, e := range entries {
		if slices.Contains(students, e.Student) {
			result = append(result, e)
		}
	}
	return result
}

// BuildWeekView 将课程按 时间段 × 星期 透视为周视图
//
// 行为筛选后出现过的时间段（字典序，即时间先后）；同一单元格的多条课程按出现顺序换行拼接。
func BuildWeekView(entries []model.CourseEntry, week int) model.WeekGrid {
	grid := model.WeekGrid{Week: week, Rows: []model.WeekRow{}}

	var filtered []model.CourseEntry
	for _, e := range entries {
		if e.IncludesWeek(week) && e.Weekday >= 0 && e.Weekday < len(model.DayNames) {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return grid
	}

	rowIndex := make(map[string]int)
	var slots []string
	for _, e := range filtered {
		if _, ok := rowIndex[e.TimeRange]; !ok {
			rowIndex[e.TimeRange] = 0
			slots = append(slots, e.TimeRange)
		}
	}
	sort.Strings(slots)

	for i, slot := range slots {
		rowIndex[slot] = i
		row := model.WeekRow{TimeRange: slot}
		for d := range row.Cells {
			row.Cells[d] = model.EmptyCell
		}
		grid.Rows = append(grid.Rows, row)
	}

	for _, e := range filtered {
		cell := &grid.Rows[rowIndex[e.TimeRange]].Cells[e.Weekday]
		if *cell == model.EmptyCell {
			*cell = e.CellText()
		} else {
			*cell += "\n" + e.CellText()
		}
	}

	return grid
}

// ── 辅助函数 ──

// civilDate 去掉时分秒，按日期所在时区的日历日归一到 UTC 零点
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(civilDate(to).Sub(civilDate(from)).Hours() / 24)
}

// mondayIndex 将 time.Weekday（0=周日）转为 0=周一 … 6=周日
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
