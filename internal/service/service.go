package service

import (
	"go.uber.org/zap"

	"github.com/uniooo/pdf-calendar/config"
	"github.com/uniooo/pdf-calendar/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Aggregate AggregateService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	extractor TextExtractor,
	logger *zap.Logger,
) *Service {
	return &Service{
		Aggregate: NewAggregateService(cfg, repo, extractor, logger),
	}
}
