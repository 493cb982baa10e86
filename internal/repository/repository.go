package repository

import "errors"

// ErrNotFound 记录不存在或已过期
var ErrNotFound = errors.New("记录不存在")

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Batch BatchRepository
	// ParseJob 解析审计；未启用数据库时为 nil
	ParseJob ParseJobRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(batch BatchRepository, parseJob ParseJobRepository) *Repository {
	return &Repository{
		Batch:    batch,
		ParseJob: parseJob,
	}
}
