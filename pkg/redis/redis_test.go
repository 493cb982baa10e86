package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/uniooo/pdf-calendar/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient 失败: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mr
}

type cached struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestClient_JSON(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	if err := client.SetJSON(ctx, "k", cached{Name: "张三", Count: 2}, time.Minute); err != nil {
		t.Fatalf("SetJSON 失败: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	var got cached
	if err := client.GetJSON(ctx, "k", &got); err != nil {
		t.Fatalf("GetJSON 失败: %v", err)
	}
	if got.Name != "张三" || got.Count != 2 {
		t.Errorf("GetJSON = %+v", got)
	}

	if err := client.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if err := client.GetJSON(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("删除后期望 ErrCacheMiss，实际: %v", err)
	}
	if err := client.Delete(ctx, "k"); err != nil {
		t.Errorf("删除不存在的键不应报错: %v", err)
	}
}

func TestClient_GetJSON_Expired(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	if err := client.SetJSON(ctx, "k", cached{Name: "a"}, time.Minute); err != nil {
		t.Fatalf("SetJSON 失败: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	var got cached
	if err := client.GetJSON(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("过期后期望 ErrCacheMiss，实际: %v", err)
	}
}

func TestClient_GetJSON_Malformed(t *testing.T) {
	client, mr := newTestClient(t)
	mr.Set("k", "not json")

	var got cached
	err := client.GetJSON(context.Background(), "k", &got)
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Errorf("非 JSON 内容应返回反序列化错误，实际: %v", err)
	}
}

func TestClient_CheckRateLimit(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		allowed, err := client.CheckRateLimit(ctx, "rl", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit 失败: %v", err)
		}
		if !allowed {
			t.Fatalf("第 %d 次请求应放行", i)
		}
	}

	allowed, err := client.CheckRateLimit(ctx, "rl", 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit 失败: %v", err)
	}
	if allowed {
		t.Error("超过上限的请求应被拒绝")
	}
	if ttl := mr.TTL("rl"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("限流键应设置窗口 TTL，实际 %v", ttl)
	}

	// 其他键互不影响
	if allowed, _ := client.CheckRateLimit(ctx, "other", 3, time.Minute); !allowed {
		t.Error("不同键应独立计数")
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewClient(&config.RedisConfig{Addr: addr}, zap.NewNop()); err == nil {
		t.Error("无法连接时应返回错误")
	}
}
