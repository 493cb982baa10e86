package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniooo/pdf-calendar/internal/dto"
	"github.com/uniooo/pdf-calendar/internal/service"
	"github.com/uniooo/pdf-calendar/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// BatchHandler 课表批次 HTTP 处理器
type BatchHandler struct {
	svc service.AggregateService
}

// NewBatchHandler 创建 BatchHandler 实例
func NewBatchHandler(svc service.AggregateService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

// Upload 上传并解析 PDF 课表
// POST /api/v1/batches
//
// multipart/form-data，字段 files 可重复
func (h *BatchHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			// 由 BodyLimit 中间件统一返回 413
			_ = c.Error(err)
			return
		}
		response.BadRequest(c, 16003, "请以 multipart/form-data 上传 files 字段")
		return
	}

	headers := form.File["files"]
	files := make([]service.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, 16003, "读取上传文件失败", fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, 16003, "读取上传文件失败", fh.Filename)
			return
		}
		files = append(files, service.UploadedFile{Filename: fh.Filename, Data: data})
	}

	resp, err := h.svc.ImportBatch(c.Request.Context(), files)
	if err != nil {
		handleAggregateError(c, err)
		return
	}
	response.Created(c, resp)
}

// GetBatch 获取批次摘要
// GET /api/v1/batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	resp, err := h.svc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAggregateError(c, err)
		return
	}
	response.OK(c, resp)
}

// DeleteBatch 删除批次
// DELETE /api/v1/batches/:id
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	if err := h.svc.DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		handleAggregateError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListParseJobs 查询批次的解析审计记录
// GET /api/v1/batches/:id/jobs
func (h *BatchHandler) ListParseJobs(c *gin.Context) {
	resp, err := h.svc.ListParseJobs(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAggregateError(c, err)
		return
	}
	response.OK(c, resp)
}

// WeekView 获取周视图
// GET /api/v1/batches/:id/week?week=&date=&semester_start=&students=
func (h *BatchHandler) WeekView(c *gin.Context) {
	query, ok := bindWeekQuery(c)
	if !ok {
		return
	}

	resp, err := h.svc.WeekView(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		handleAggregateError(c, err)
		return
	}
	response.OK(c, resp)
}

// ExportExcel 导出周视图 Excel
// GET /api/v1/batches/:id/export/excel
func (h *BatchHandler) ExportExcel(c *gin.Context) {
	query, ok := bindWeekQuery(c)
	if !ok {
		return
	}

	data, filename, err := h.svc.ExportWeekExcel(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		handleAggregateError(c, err)
		return
	}
	writeAttachment(c, contentTypeXLSX, filename, data)
}

// ExportICS 导出 iCalendar
// GET /api/v1/batches/:id/export/ics
func (h *BatchHandler) ExportICS(c *gin.Context) {
	query, ok := bindWeekQuery(c)
	if !ok {
		return
	}

	data, filename, err := h.svc.ExportICS(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		handleAggregateError(c, err)
		return
	}
	writeAttachment(c, contentTypeICS, filename, data)
}

// WeekNumber 计算日期所在教学周
// GET /api/v1/week-number?semester_start=&date=
func (h *BatchHandler) WeekNumber(c *gin.Context) {
	var query dto.WeekNumberQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}

	resp, err := h.svc.WeekNumber(&query)
	if err != nil {
		handleAggregateError(c, err)
		return
	}
	response.OK(c, resp)
}

func bindWeekQuery(c *gin.Context) (*dto.WeekQuery, bool) {
	var query dto.WeekQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return nil, false
	}
	query.Students = studentsQuery(c)
	return &query, true
}

// ── 错误映射 ──

func handleAggregateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoFiles):
		response.BadRequest(c, 16001, "请至少上传一个 PDF 文件")
	case errors.Is(err, service.ErrTooManyFiles):
		response.ErrorWithDetails(c, http.StatusBadRequest, 16002, "上传文件数量超过上限", err.Error())
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 16004, "批次不存在或已过期，请重新上传")
	case errors.Is(err, service.ErrInvalidWeekQuery):
		response.ErrorWithDetails(c, http.StatusBadRequest, 16005, "周次参数无效", err.Error())
	case errors.Is(err, service.ErrAuditDisabled):
		response.NotFound(c, 16007, "未启用解析审计")
	case errors.Is(err, service.ErrExportFailed):
		response.Error(c, http.StatusInternalServerError, 16006, "生成导出文件失败")
	default:
		response.InternalError(c)
	}
}
