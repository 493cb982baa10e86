package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/uniooo/pdf-calendar/internal/model"
)

// ParseJobRepository 解析任务审计数据访问接口
type ParseJobRepository interface {
	Create(ctx context.Context, job *model.ParseJob) error
	ListByBatch(ctx context.Context, batchID string) ([]model.ParseJob, error)
}

type parseJobRepo struct {
	db *gorm.DB
}

// NewParseJobRepo 创建 ParseJobRepository 实例
func NewParseJobRepo(db *gorm.DB) ParseJobRepository {
	return &parseJobRepo{db: db}
}

func (r *parseJobRepo) Create(ctx context.Context, job *model.ParseJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *parseJobRepo) ListByBatch(ctx context.Context, batchID string) ([]model.ParseJob, error) {
	var jobs []model.ParseJob
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&jobs).Error
	return jobs, err
}
