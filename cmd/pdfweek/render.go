package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/uniooo/pdf-calendar/internal/dto"
	"github.com/uniooo/pdf-calendar/internal/model"
)

var (
	blue  = lipgloss.Color("#2563EB")
	red   = lipgloss.Color("#DC2626")
	amber = lipgloss.Color("#D97706")
	gray  = lipgloss.Color("#6B7280")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(blue)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(blue).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	emptyStyle  = cellStyle.Foreground(gray)
	noticeStyle = lipgloss.NewStyle().Foreground(amber)
)

var statusStyles = map[string]lipgloss.Style{
	model.ParseStatusParsed: lipgloss.NewStyle().Foreground(blue),
	model.ParseStatusEmpty:  lipgloss.NewStyle().Foreground(amber),
	model.ParseStatusFailed: lipgloss.NewStyle().Foreground(red),
}

// renderOutcomes 每个文件一行：状态、文件名、学生与课程数
func renderOutcomes(batch *dto.BatchResponse) string {
	var b strings.Builder
	for _, f := range batch.Files {
		status := statusStyles[f.Status].Render(fmt.Sprintf("%-6s", f.Status))
		switch f.Status {
		case model.ParseStatusFailed:
			fmt.Fprintf(&b, "%s %s: %s\n", status, f.Filename, f.Error)
		default:
			fmt.Fprintf(&b, "%s %s → %s（%d 门课程）\n", status, f.Filename, f.Student, f.EntryCount)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderWeek 以表格输出周视图；无课时输出提示
func renderWeek(view *dto.WeekViewResponse) string {
	title := titleStyle.Render(fmt.Sprintf("第 %d 周", view.Week))
	if len(view.Rows) == 0 {
		return title + "\n" + noticeStyle.Render(noticeText(view.Notice))
	}

	rows := make([][]string, 0, len(view.Rows))
	for _, r := range view.Rows {
		row := make([]string, 0, len(r.Cells)+1)
		row = append(row, r.TimeRange)
		row = append(row, r.Cells[:]...)
		rows = append(rows, row)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(blue)).
		BorderRow(true).
		Headers(view.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(rows) && col > 0 && rows[row][col] == model.EmptyCell:
				return emptyStyle
			default:
				return cellStyle
			}
		})

	return title + "\n" + tbl.String()
}

func noticeText(notice string) string {
	switch notice {
	case dto.NoticeNoEntries:
		return "未从上传的文件中解析出任何课程"
	case dto.NoticeNoStudentsSelected:
		return "未选择任何学生"
	case dto.NoticeNoCoursesThisWeek:
		return "所选学生本周没有课程"
	default:
		return ""
	}
}
