package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/uniooo/pdf-calendar/config"
	"github.com/uniooo/pdf-calendar/internal/dto"
	"github.com/uniooo/pdf-calendar/internal/model"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-week", "3", "-student", "张三", "-student", "李四", "a.pdf", "b.pdf"})
	if err != nil {
		t.Fatalf("parseFlags 失败: %v", err)
	}
	if opts.week != 3 {
		t.Errorf("week = %d", opts.week)
	}
	if len(opts.students) != 2 || opts.students[1] != "李四" {
		t.Errorf("students = %v", opts.students)
	}
	if len(opts.files) != 2 {
		t.Errorf("files = %v", opts.files)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	cases := [][]string{
		{},
		{"-week", "-2", "a.pdf"},
		{"-week", "abc", "a.pdf"},
	}
	for _, args := range cases {
		if _, err := parseFlags(args); err == nil {
			t.Errorf("parseFlags(%v) 应返回错误", args)
		}
	}
}

func TestRenderWeek(t *testing.T) {
	view := &dto.WeekViewResponse{
		Week:    3,
		Columns: append([]string{model.TimeSlotHeader}, model.DayNames[:]...),
		Rows: []model.WeekRow{{
			TimeRange: "08:00-09:40",
			Cells:     [7]string{"张三：高等数学", "无", "无", "无", "无", "无", "无"},
		}},
	}

	out := renderWeek(view)
	for _, want := range []string{"第 3 周", "时间段", "周日", "08:00-09:40", "张三：高等数学"} {
		if !strings.Contains(out, want) {
			t.Errorf("输出缺少 %q:\n%s", want, out)
		}
	}
}

func TestRenderWeek_Empty(t *testing.T) {
	out := renderWeek(&dto.WeekViewResponse{Week: 5, Rows: []model.WeekRow{}, Notice: dto.NoticeNoCoursesThisWeek})
	if !strings.Contains(out, "本周没有课程") {
		t.Errorf("空周视图应输出提示:\n%s", out)
	}
}

func TestRenderOutcomes(t *testing.T) {
	out := renderOutcomes(&dto.BatchResponse{Files: []model.FileOutcome{
		{Filename: "a.pdf", Student: "张三", Status: model.ParseStatusParsed, EntryCount: 2},
		{Filename: "b.pdf", Status: model.ParseStatusFailed, Error: "PDF 文本提取失败"},
	}})
	if !strings.Contains(out, "a.pdf → 张三（2 门课程）") {
		t.Errorf("成功文件输出不正确:\n%s", out)
	}
	if !strings.Contains(out, "b.pdf: PDF 文本提取失败") {
		t.Errorf("失败文件输出不正确:\n%s", out)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	cfg := &config.Config{
		Batch:     config.BatchConfig{TTL: time.Hour, MaxFiles: 10},
		Timetable: config.TimetableConfig{SemesterStart: "2024-02-26", Timezone: "UTC", Placeholder: "课程"},
	}
	dir := t.TempDir()
	notPDF := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(notPDF, []byte("第1周 周一 08:00-09:40 高等数学"), 0o644); err != nil {
		t.Fatal(err)
	}

	code := run(context.Background(), cfg, &options{files: []string{notPDF}}, zap.NewNop())
	if code != 1 {
		t.Errorf("无法解析任何课程时退出码应为 1，实际 %d", code)
	}

	code = run(context.Background(), cfg, &options{files: []string{filepath.Join(dir, "missing.pdf")}}, zap.NewNop())
	if code != 2 {
		t.Errorf("文件不存在时退出码应为 2，实际 %d", code)
	}
}
