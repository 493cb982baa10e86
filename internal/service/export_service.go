package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/uniooo/pdf-calendar/internal/dto"
	"github.com/uniooo/pdf-calendar/internal/model"
)

const icsProductID = "-//uniooo//pdf-calendar//CN"

// ═══════════════════════════════════════════════════════════
// ExportWeekExcel — 导出周视图为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "第N周"
//   - 表头：时间段 | 周一 ~ 周日
//   - 每个时间段一行，单元格自动换行，无课为 "无"

func (s *aggregateService) ExportWeekExcel(ctx context.Context, batchID string, query *dto.WeekQuery) ([]byte, string, error) {
	view, err := s.WeekView(ctx, batchID, query)
	if err != nil {
		return nil, "", err
	}

	grid := model.WeekGrid{Week: view.Week, Rows: view.Rows}
	buf, err := RenderWeekExcel(grid)
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.String("batch_id", batchID), zap.Error(err))
		return nil, "", ErrExportFailed
	}
	return buf.Bytes(), WeekExcelFilename(view.Week), nil
}

// WeekExcelFilename 周视图 Excel 的建议文件名
func WeekExcelFilename(week int) string {
	return fmt.Sprintf("课程表_第%d周.xlsx", week)
}

// RenderWeekExcel 将周视图写入新的工作簿
func RenderWeekExcel(grid model.WeekGrid) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("第%d周", grid.Week)
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", colName(len(model.DayNames)), 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	// 表头
	f.SetCellValue(sheetName, cell("A", 1), model.TimeSlotHeader)
	for d, name := range model.DayNames {
		f.SetCellValue(sheetName, cell(colName(d+1), 1), name)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(model.DayNames)), 1), headerStyle)

	// 数据行
	for i, row := range grid.Rows {
		r := i + 2
		f.SetCellValue(sheetName, cell("A", r), row.TimeRange)
		for d, text := range row.Cells {
			f.SetCellValue(sheetName, cell(colName(d+1), r), text)
		}
	}
	if len(grid.Rows) > 0 {
		last := len(grid.Rows) + 1
		f.SetCellStyle(sheetName, "A2", cell(colName(len(model.DayNames)), last), cellStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS — 导出 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条课程一个按周重复的 VEVENT：
//   - DTSTART = 第 week_start 周对应星期的上课时间
//   - RRULE:FREQ=WEEKLY;COUNT=week_end-week_start+1
//   - 时间段无法解析为 HH:MM-HH:MM 的课程跳过

func (s *aggregateService) ExportICS(ctx context.Context, batchID string, query *dto.WeekQuery) ([]byte, string, error) {
	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, "", err
	}
	sel, err := s.resolveSelection(batch, query)
	if err != nil {
		return nil, "", err
	}

	entries := FilterByStudents(batch.Entries, sel.students)
	cal, skipped := BuildCalendar(entries, CalendarOptions{
		SemesterStart: sel.semesterStart,
		Location:      s.cfg.Timetable.Location(),
		UIDPrefix:     batch.BatchID,
		Now:           s.now(),
	})
	if skipped > 0 {
		s.logger.Warn("部分课程时间无法解析，未写入日历",
			zap.String("batch_id", batchID),
			zap.Int("skipped", skipped),
		)
	}

	return []byte(cal.Serialize()), "课程表.ics", nil
}

// CalendarOptions 生成日历所需的上下文
type CalendarOptions struct {
	SemesterStart time.Time
	Location      *time.Location
	UIDPrefix     string
	Now           time.Time
}

// BuildCalendar 将课程转换为日历，返回跳过的课程数
func BuildCalendar(entries []model.CourseEntry, opts CalendarOptions) (*ics.Calendar, int) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("课程表")
	cal.SetXWRTimezone(loc.String())

	skipped := 0
	for i, e := range entries {
		startClock, endClock, ok := splitTimeRange(e.TimeRange)
		if !ok || e.Weekday < 0 || e.Weekday >= len(model.DayNames) {
			skipped++
			continue
		}

		day := WeekDate(opts.SemesterStart, e.WeekStart, e.Weekday)
		startAt := time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, loc)
		endAt := time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, loc)

		event := cal.AddEvent(fmt.Sprintf("%s-%d@pdf-calendar", opts.UIDPrefix, i))
		event.SetDtStampTime(opts.Now)
		event.SetStartAt(startAt)
		event.SetEndAt(endAt)
		event.SetSummary(e.Student + "：" + e.CourseName)
		if e.Location != "" {
			event.SetLocation(e.Location)
		}
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", e.WeekEnd-e.WeekStart+1))
	}
	return cal, skipped
}

// splitTimeRange 拆分 "HH:MM-HH:MM"
func splitTimeRange(timeRange string) (time.Time, time.Time, bool) {
	startStr, endStr, found := strings.Cut(timeRange, "-")
	if !found {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse("15:04", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("15:04", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
