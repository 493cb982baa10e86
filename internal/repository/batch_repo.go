package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/uniooo/pdf-calendar/internal/model"
	"github.com/uniooo/pdf-calendar/pkg/redis"
)

// BatchRepository 上传批次存储接口
//
// 批次只在 TTL 内有效，不做跨会话持久化。
type BatchRepository interface {
	Save(ctx context.Context, batch *model.Batch, ttl time.Duration) error
	// Get 批次不存在或已过期时返回 ErrNotFound
	Get(ctx context.Context, batchID string) (*model.Batch, error)
	Delete(ctx context.Context, batchID string) error
}

// ── 内存实现 ──

type memoryBatch struct {
	batch     model.Batch
	expiresAt time.Time
}

type memoryBatchRepo struct {
	mu      sync.RWMutex
	batches map[string]memoryBatch
	now     func() time.Time
}

// NewMemoryBatchRepo 创建进程内批次存储（未启用 Redis 时使用）
func NewMemoryBatchRepo() BatchRepository {
	return &memoryBatchRepo{batches: make(map[string]memoryBatch), now: time.Now}
}

func (r *memoryBatchRepo) Save(_ context.Context, batch *model.Batch, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	// 顺带清理过期批次
	for id, b := range r.batches {
		if !now.Before(b.expiresAt) {
			delete(r.batches, id)
		}
	}
	r.batches[batch.BatchID] = memoryBatch{batch: *batch, expiresAt: now.Add(ttl)}
	return nil
}

func (r *memoryBatchRepo) Get(_ context.Context, batchID string) (*model.Batch, error) {
	r.mu.RLock()
	b, ok := r.batches[batchID]
	r.mu.RUnlock()

	if !ok || !r.now().Before(b.expiresAt) {
		return nil, ErrNotFound
	}
	batch := b.batch
	return &batch, nil
}

func (r *memoryBatchRepo) Delete(_ context.Context, batchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.batches, batchID)
	return nil
}

// ── Redis 实现 ──

const batchKeyPrefix = "batch:"

type redisBatchRepo struct {
	rdb *redis.Client
}

// NewRedisBatchRepo 创建 Redis 批次存储，批次以 JSON 保存并设置 TTL
func NewRedisBatchRepo(rdb *redis.Client) BatchRepository {
	return &redisBatchRepo{rdb: rdb}
}

func (r *redisBatchRepo) Save(ctx context.Context, batch *model.Batch, ttl time.Duration) error {
	return r.rdb.SetJSON(ctx, batchKeyPrefix+batch.BatchID, batch, ttl)
}

func (r *redisBatchRepo) Get(ctx context.Context, batchID string) (*model.Batch, error) {
	var batch model.Batch
	if err := r.rdb.GetJSON(ctx, batchKeyPrefix+batchID, &batch); err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

func (r *redisBatchRepo) Delete(ctx context.Context, batchID string) error {
	return r.rdb.Delete(ctx, batchKeyPrefix+batchID)
}
