package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniooo/pdf-calendar/config"
	"github.com/uniooo/pdf-calendar/internal/api/handler"
	"github.com/uniooo/pdf-calendar/internal/dto"
	"github.com/uniooo/pdf-calendar/internal/repository"
	"github.com/uniooo/pdf-calendar/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// plainTextExtractor 直接把上传内容当作 PDF 文本
type plainTextExtractor struct{}

func (plainTextExtractor) ExtractText(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}

func setupEngine(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:        8080,
			MaxUploadMB: 1,
			CORS:        config.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}},
		},
		Batch:     config.BatchConfig{TTL: time.Hour, MaxFiles: 10},
		RateLimit: config.RateLimitConfig{Requests: 60, Window: time.Minute},
		Timetable: config.TimetableConfig{SemesterStart: "2024-02-26", Timezone: "UTC", Placeholder: "课程"},
	}
	repo := repository.NewRepository(repository.NewMemoryBatchRepo(), nil)
	svc := service.NewService(cfg, repo, plainTextExtractor{}, zap.NewNop())
	return Setup(cfg, handler.NewHandler(svc), nil, zap.NewNop())
}

func TestHealth(t *testing.T) {
	r := setupEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestUploadThenWeekView(t *testing.T) {
	r := setupEngine(t)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, _ := mw.CreateFormFile("files", "zhangsan.pdf")
	fw.Write([]byte("学生：张三\n第1-16周 周一 08:00-09:40 高等数学 A101"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var uploaded struct {
		Data dto.BatchResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if uploaded.Data.EntryCount != 1 || len(uploaded.Data.Students) != 1 {
		t.Fatalf("unexpected batch: %+v", uploaded.Data)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batches/"+uploaded.Data.BatchID+"/week?week=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("week: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var view struct {
		Data dto.WeekViewResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &view)
	if len(view.Data.Rows) != 1 || view.Data.Rows[0].Cells[0] != "张三：高等数学（A101）" {
		t.Errorf("unexpected week view: %+v", view.Data)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batches/unknown/week", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown batch: expected 404, got %d", w.Code)
	}
}

func TestDeleteBatchAndAuditDisabled(t *testing.T) {
	r := setupEngine(t)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, _ := mw.CreateFormFile("files", "zhangsan.pdf")
	fw.Write([]byte("学生：张三\n第1-16周 周一 08:00-09:40 高等数学 A101"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var uploaded struct {
		Data dto.BatchResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &uploaded); err != nil || uploaded.Data.BatchID == "" {
		t.Fatalf("upload failed: %d %s", w.Code, w.Body.String())
	}
	path := "/api/v1/batches/" + uploaded.Data.BatchID

	// 未配置数据库：审计接口不可用
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path+"/jobs", nil))
	if w.Code != http.StatusNotFound || !bytes.Contains(w.Body.Bytes(), []byte(`"code":16007`)) {
		t.Errorf("jobs: expected 404 with code 16007, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := setupEngine(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/batches", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("unexpected allow origin: %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete) {
		t.Errorf("DELETE not allowed: %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}
