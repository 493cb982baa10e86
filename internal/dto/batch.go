package dto

import (
	"time"

	"github.com/uniooo/pdf-calendar/internal/model"
)

// ── 提示状态 ──
//
// "没有匹配"属于提示，不是错误：响应仍为 2xx，通过 Notice 区分。
const (
	NoticeNoEntries          = "no_entries"           // 所有文件都没有解析出课程
	NoticeNoStudentsSelected = "no_students_selected" // 显式传入了空的学生筛选
	NoticeNoCoursesThisWeek  = "no_courses_this_week" // 筛选后该周无课
)

// BatchResponse 上传批次摘要
type BatchResponse struct {
	BatchID    string              `json:"batch_id"`
	CreatedAt  time.Time           `json:"created_at"`
	Files      []model.FileOutcome `json:"files"`
	Students   []string            `json:"students"`
	EntryCount int                 `json:"entry_count"`
	Notice     string              `json:"notice,omitempty"`
}

// ParseJobResponse 单个文件的解析审计记录
type ParseJobResponse struct {
	Filename   string    `json:"filename"`
	Student    string    `json:"student,omitempty"`
	Status     string    `json:"status"`
	EntryCount int       `json:"entry_count"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// ParseJobListResponse 批次的解析审计列表（按记录时间升序）
type ParseJobListResponse struct {
	BatchID string             `json:"batch_id"`
	Jobs    []ParseJobResponse `json:"jobs"`
}

// WeekQuery 周视图查询参数
//
// Week > 0 时为手动周次；否则由 SemesterStart 与 Date 自动推算（均可缺省）。
// Students 为 nil 表示全部学生；非 nil 的空切片表示未选择任何学生。
type WeekQuery struct {
	Week          int      `form:"week" binding:"omitempty,min=1"`
	Date          string   `form:"date"`
	SemesterStart string   `form:"semester_start"`
	Students      []string `form:"-"`
}

// WeekViewResponse 周视图
type WeekViewResponse struct {
	Week          int             `json:"week"`
	SemesterStart string          `json:"semester_start,omitempty"` // 自动推算时回显
	Columns       []string        `json:"columns"`
	Rows          []model.WeekRow `json:"rows"`
	Students      []string        `json:"students"`
	Notice        string          `json:"notice,omitempty"`
}

// WeekNumberQuery 周次计算参数
type WeekNumberQuery struct {
	SemesterStart string `form:"semester_start"`
	Date          string `form:"date"`
}

// WeekNumberResponse 周次计算结果
type WeekNumberResponse struct {
	Week          int    `json:"week"`
	SemesterStart string `json:"semester_start"`
	Date          string `json:"date"`
}
