package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniooo/pdf-calendar/config"
	"github.com/uniooo/pdf-calendar/internal/dto"
	"github.com/uniooo/pdf-calendar/internal/model"
	"github.com/uniooo/pdf-calendar/internal/repository"
	apperrors "github.com/uniooo/pdf-calendar/pkg/errors"
)

// ── 聚合模块业务错误 ──

var (
	ErrNoFiles          = errors.New("未上传任何文件")
	ErrTooManyFiles     = errors.New("上传文件数量超过上限")
	ErrBatchNotFound    = errors.New("批次不存在或已过期")
	ErrInvalidWeekQuery = errors.New("周次参数无效")
	ErrExportFailed     = errors.New("生成导出文件失败")
	ErrAuditDisabled    = errors.New("未启用解析审计")
)

// UploadedFile 一个待解析的上传文件
type UploadedFile struct {
	Filename string
	Data     []byte
}

// ── AggregateService 接口 ──────────────────────────────────
//
// 一次上传生成一个批次：逐个文件提取文本、识别姓名、解析课程，
// 单个文件失败只记录在该文件的结果中，不影响其他文件。
// 批次保存在批次存储中，周视图与导出都基于批次 ID。
// ─────────────────────────────────────────────────────────────

// AggregateService 课表聚合业务接口
type AggregateService interface {
	// ImportBatch 解析一批上传文件并保存为新批次
	ImportBatch(ctx context.Context, files []UploadedFile) (*dto.BatchResponse, error)
	// GetBatch 获取批次摘要
	GetBatch(ctx context.Context, batchID string) (*dto.BatchResponse, error)
	// DeleteBatch 提前删除批次（不等待过期）
	DeleteBatch(ctx context.Context, batchID string) error
	// ListParseJobs 查询批次的解析审计记录；未配置数据库时返回 ErrAuditDisabled
	ListParseJobs(ctx context.Context, batchID string) (*dto.ParseJobListResponse, error)
	// WeekView 生成指定周的周视图
	WeekView(ctx context.Context, batchID string, query *dto.WeekQuery) (*dto.WeekViewResponse, error)
	// ExportWeekExcel 导出周视图为 Excel，返回内容与建议文件名
	ExportWeekExcel(ctx context.Context, batchID string, query *dto.WeekQuery) ([]byte, string, error)
	// ExportICS 导出所选学生的全部课程为 iCalendar
	ExportICS(ctx context.Context, batchID string, query *dto.WeekQuery) ([]byte, string, error)
	// WeekNumber 计算日期所在教学周
	WeekNumber(query *dto.WeekNumberQuery) (*dto.WeekNumberResponse, error)
}

type aggregateService struct {
	cfg       *config.Config
	repo      *repository.Repository
	extractor TextExtractor
	parser    LineParser
	logger    *zap.Logger
	now       func() time.Time
}

// NewAggregateService 创建 AggregateService 实例
func NewAggregateService(
	cfg *config.Config,
	repo *repository.Repository,
	extractor TextExtractor,
	logger *zap.Logger,
) AggregateService {
	return &aggregateService{
		cfg:       cfg,
		repo:      repo,
		extractor: extractor,
		parser:    NewLineParser(cfg.Timetable.Placeholder),
		logger:    logger,
		now:       time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// ImportBatch — 解析上传文件
// ═══════════════════════════════════════════════════════════

func (s *aggregateService) ImportBatch(ctx context.Context, files []UploadedFile) (*dto.BatchResponse, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > s.cfg.Batch.MaxFiles {
		return nil, fmt.Errorf("%w: 最多 %d 个", ErrTooManyFiles, s.cfg.Batch.MaxFiles)
	}

	batch := &model.Batch{
		BatchID:   uuid.NewString(),
		CreatedAt: s.now(),
		Files:     make([]model.FileOutcome, 0, len(files)),
		Entries:   []model.CourseEntry{},
	}
	studentSet := make(map[string]struct{})

	// 逐个顺序处理，保证课程顺序与上传顺序一致
	for _, f := range files {
		started := time.Now()
		outcome, entries, err := s.parseFile(ctx, f)
		if err != nil {
			return nil, err
		}

		batch.Files = append(batch.Files, outcome)
		batch.Entries = append(batch.Entries, entries...)
		if outcome.Status != model.ParseStatusFailed {
			studentSet[outcome.Student] = struct{}{}
		}

		s.recordParseJob(ctx, batch.BatchID, outcome, time.Since(started))
	}

	batch.Students = make([]string, 0, len(studentSet))
	for name := range studentSet {
		batch.Students = append(batch.Students, name)
	}
	slices.Sort(batch.Students)

	if err := s.repo.Batch.Save(ctx, batch, s.cfg.Batch.TTL); err != nil {
		s.logger.Error("保存批次失败", zap.String("batch_id", batch.BatchID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("批次解析完成",
		zap.String("batch_id", batch.BatchID),
		zap.Int("files", len(batch.Files)),
		zap.Int("entries", len(batch.Entries)),
		zap.Int("students", len(batch.Students)),
	)

	return toBatchResponse(batch), nil
}

// parseFile 解析单个文件；只有上下文取消会作为错误返回
func (s *aggregateService) parseFile(ctx context.Context, f UploadedFile) (model.FileOutcome, []model.CourseEntry, error) {
	outcome := model.FileOutcome{Filename: f.Filename}

	text, err := s.extractor.ExtractText(ctx, f.Data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, nil, ctxErr
		}
		var extErr *apperrors.ExtractionError
		if errors.As(err, &extErr) && extErr.Filename == "" {
			err = apperrors.NewExtractionError(f.Filename, extErr.Err)
		}
		s.logger.Warn("PDF 解析失败", zap.String("filename", f.Filename), zap.Error(err))

		outcome.Status = model.ParseStatusFailed
		outcome.Error = err.Error()
		return outcome, nil, nil
	}

	fallback := FallbackStudentName(f.Filename)
	student, entries := s.parser.ParseText(text, fallback)
	if len(entries) == 0 {
		outcome.Status = model.ParseStatusEmpty
		outcome.Student = fallback
		s.logger.Info("文件中未发现课程", zap.String("filename", f.Filename))
		return outcome, nil, nil
	}

	outcome.Status = model.ParseStatusParsed
	outcome.Student = student
	outcome.EntryCount = len(entries)
	s.logger.Info("文件解析成功",
		zap.String("filename", f.Filename),
		zap.String("student", student),
		zap.Int("entries", len(entries)),
	)
	return outcome, entries, nil
}

// recordParseJob 写入解析审计；失败只记录日志
func (s *aggregateService) recordParseJob(ctx context.Context, batchID string, outcome model.FileOutcome, elapsed time.Duration) {
	if s.repo.ParseJob == nil {
		return
	}
	job := &model.ParseJob{
		BatchID:      batchID,
		Filename:     outcome.Filename,
		Student:      outcome.Student,
		Status:       outcome.Status,
		EntryCount:   outcome.EntryCount,
		ErrorMessage: outcome.Error,
		DurationMS:   elapsed.Milliseconds(),
	}
	if err := s.repo.ParseJob.Create(ctx, job); err != nil {
		s.logger.Warn("写入解析审计失败", zap.String("filename", outcome.Filename), zap.Error(err))
	}
}

// FallbackStudentName 去掉最后一个扩展名的文件名；结果为空时返回原文件名
func FallbackStudentName(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if name == "" {
		return filename
	}
	return name
}

// ═══════════════════════════════════════════════════════════
// GetBatch
// ═══════════════════════════════════════════════════════════

func (s *aggregateService) GetBatch(ctx context.Context, batchID string) (*dto.BatchResponse, error) {
	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

func (s *aggregateService) loadBatch(ctx context.Context, batchID string) (*model.Batch, error) {
	batch, err := s.repo.Batch.Get(ctx, batchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBatchNotFound
		}
		s.logger.Error("读取批次失败", zap.String("batch_id", batchID), zap.Error(err))
		return nil, err
	}
	return batch, nil
}

// ═══════════════════════════════════════════════════════════
// DeleteBatch / ListParseJobs
// ═══════════════════════════════════════════════════════════

func (s *aggregateService) DeleteBatch(ctx context.Context, batchID string) error {
	if _, err := s.loadBatch(ctx, batchID); err != nil {
		return err
	}
	if err := s.repo.Batch.Delete(ctx, batchID); err != nil {
		s.logger.Error("删除批次失败", zap.String("batch_id", batchID), zap.Error(err))
		return err
	}
	s.logger.Info("批次已删除", zap.String("batch_id", batchID))
	return nil
}

// ListParseJobs 审计记录不随批次过期，批次删除后仍可查询
func (s *aggregateService) ListParseJobs(ctx context.Context, batchID string) (*dto.ParseJobListResponse, error) {
	if s.repo.ParseJob == nil {
		return nil, ErrAuditDisabled
	}
	jobs, err := s.repo.ParseJob.ListByBatch(ctx, batchID)
	if err != nil {
		s.logger.Error("查询解析审计失败", zap.String("batch_id", batchID), zap.Error(err))
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrBatchNotFound
	}

	resp := &dto.ParseJobListResponse{
		BatchID: batchID,
		Jobs:    make([]dto.ParseJobResponse, 0, len(jobs)),
	}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, dto.ParseJobResponse{
			Filename:   j.Filename,
			Student:    j.Student,
			Status:     j.Status,
			EntryCount: j.EntryCount,
			Error:      j.ErrorMessage,
			DurationMS: j.DurationMS,
			CreatedAt:  j.CreatedAt,
		})
	}
	return resp, nil
}

func toBatchResponse(batch *model.Batch) *dto.BatchResponse {
	resp := &dto.BatchResponse{
		BatchID:    batch.BatchID,
		CreatedAt:  batch.CreatedAt,
		Files:      batch.Files,
		Students:   batch.Students,
		EntryCount: len(batch.Entries),
	}
	if len(batch.Entries) == 0 {
		resp.Notice = dto.NoticeNoEntries
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// WeekView — 周视图
// ═══════════════════════════════════════════════════════════

// weekSelection 解析后的周视图查询
type weekSelection struct {
	week          int
	semesterStart time.Time
	students      []string
	notice        string
}

func (s *aggregateService) WeekView(ctx context.Context, batchID string, query *dto.WeekQuery) (*dto.WeekViewResponse, error) {
	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	sel, err := s.resolveSelection(batch, query)
	if err != nil {
		return nil, err
	}

	grid := BuildWeekView(FilterByStudents(batch.Entries, sel.students), sel.week)

	resp := &dto.WeekViewResponse{
		Week:          sel.week,
		SemesterStart: sel.semesterStart.Format(config.DateLayout),
		Columns:       weekColumns(),
		Rows:          grid.Rows,
		Students:      sel.students,
		Notice:        sel.notice,
	}
	if resp.Notice == "" && grid.IsEmpty() {
		resp.Notice = dto.NoticeNoCoursesThisWeek
	}
	return resp, nil
}

// resolveSelection 确定周次、学期起始日与所选学生
func (s *aggregateService) resolveSelection(batch *model.Batch, query *dto.WeekQuery) (*weekSelection, error) {
	if query == nil {
		query = &dto.WeekQuery{}
	}

	start, err := s.semesterStart(query.SemesterStart)
	if err != nil {
		return nil, err
	}

	sel := &weekSelection{semesterStart: start}

	switch {
	case query.Week > 0:
		sel.week = query.Week
	case query.Week < 0:
		return nil, fmt.Errorf("%w: 周次必须不小于 1", ErrInvalidWeekQuery)
	default:
		ref, err := s.referenceDate(query.Date)
		if err != nil {
			return nil, err
		}
		sel.week = ComputeWeekNumber(start, ref)
	}

	if query.Students == nil {
		sel.students = batch.Students
	} else {
		sel.students = []string{}
		for _, name := range query.Students {
			if slices.Contains(batch.Students, name) && !slices.Contains(sel.students, name) {
				sel.students = append(sel.students, name)
			}
		}
		if len(sel.students) == 0 {
			sel.notice = dto.NoticeNoStudentsSelected
		}
	}

	return sel, nil
}

func (s *aggregateService) semesterStart(raw string) (time.Time, error) {
	if raw == "" {
		return s.cfg.Timetable.DefaultSemesterStart(s.now().In(s.cfg.Timetable.Location())), nil
	}
	t, err := time.Parse(config.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: semester_start 格式应为 YYYY-MM-DD", ErrInvalidWeekQuery)
	}
	return t, nil
}

// referenceDate 未指定日期时取配置时区下的今天
func (s *aggregateService) referenceDate(raw string) (time.Time, error) {
	if raw == "" {
		return s.now().In(s.cfg.Timetable.Location()), nil
	}
	t, err := time.Parse(config.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date 格式应为 YYYY-MM-DD", ErrInvalidWeekQuery)
	}
	return t, nil
}

func weekColumns() []string {
	columns := make([]string, 0, len(model.DayNames)+1)
	columns = append(columns, model.TimeSlotHeader)
	return append(columns, model.DayNames[:]...)
}

// ═══════════════════════════════════════════════════════════
// WeekNumber
// ═══════════════════════════════════════════════════════════

func (s *aggregateService) WeekNumber(query *dto.WeekNumberQuery) (*dto.WeekNumberResponse, error) {
	start, err := s.semesterStart(query.SemesterStart)
	if err != nil {
		return nil, err
	}
	ref, err := s.referenceDate(query.Date)
	if err != nil {
		return nil, err
	}
	return &dto.WeekNumberResponse{
		Week:          ComputeWeekNumber(start, ref),
		SemesterStart: start.Format(config.DateLayout),
		Date:          ref.Format(config.DateLayout),
	}, nil
}
