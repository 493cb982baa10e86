package service

import (
	"context"
	"errors"
	"time"

	"github.com/uniooo/pdf-calendar/internal/model"
	"github.com/uniooo/pdf-calendar/internal/repository"
	apperrors "github.com/uniooo/pdf-calendar/pkg/errors"
)

// ── Mock BatchRepository ──

type mockBatchRepo struct {
	batches map[string]*model.Batch
	ttls    map[string]time.Duration
	saveErr error
}

func newMockBatchRepo() *mockBatchRepo {
	return &mockBatchRepo{
		batches: make(map[string]*model.Batch),
		ttls:    make(map[string]time.Duration),
	}
}

func (m *mockBatchRepo) Save(_ context.Context, batch *model.Batch, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.batches[batch.BatchID] = batch
	m.ttls[batch.BatchID] = ttl
	return nil
}

func (m *mockBatchRepo) Get(_ context.Context, batchID string) (*model.Batch, error) {
	if b, ok := m.batches[batchID]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockBatchRepo) Delete(_ context.Context, batchID string) error {
	delete(m.batches, batchID)
	return nil
}

// ── Mock ParseJobRepository ──

type mockParseJobRepo struct {
	jobs      []model.ParseJob
	createErr error
}

func newMockParseJobRepo() *mockParseJobRepo {
	return &mockParseJobRepo{}
}

func (m *mockParseJobRepo) Create(_ context.Context, job *model.ParseJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.jobs = append(m.jobs, *job)
	return nil
}

func (m *mockParseJobRepo) ListByBatch(_ context.Context, batchID string) ([]model.ParseJob, error) {
	var result []model.ParseJob
	for _, j := range m.jobs {
		if j.BatchID == batchID {
			result = append(result, j)
		}
	}
	return result, nil
}

// ── Fake TextExtractor ──

// fakeExtractor 把文件内容当作已提取的文本；以 "BROKEN" 开头的内容视为无法解析
type fakeExtractor struct{}

func (fakeExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := string(data)
	if len(text) >= 6 && text[:6] == "BROKEN" {
		return "", apperrors.NewExtractionError("", errors.New("malformed PDF"))
	}
	return text, nil
}
