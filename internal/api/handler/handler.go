package handler

import "github.com/uniooo/pdf-calendar/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Batch *BatchHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Batch: NewBatchHandler(svc.Aggregate),
	}
}
