package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/uniooo/pdf-calendar/config"
	"github.com/uniooo/pdf-calendar/internal/api/handler"
	"github.com/uniooo/pdf-calendar/internal/api/router"
	"github.com/uniooo/pdf-calendar/internal/repository"
	"github.com/uniooo/pdf-calendar/internal/service"
	"github.com/uniooo/pdf-calendar/pkg/database"
	applogger "github.com/uniooo/pdf-calendar/pkg/logger"
	"github.com/uniooo/pdf-calendar/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml 或 ./config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("audit_db", cfg.Database.Enabled),
	)

	// 3. 连接数据库（可选：仅用于解析任务审计）
	var db *gorm.DB
	var parseJobRepo repository.ParseJobRepository
	if cfg.Database.Enabled {
		db, err = database.NewDB(&cfg.Database, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}

		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		parseJobRepo = repository.NewParseJobRepo(db)
	}

	// 4. 连接 Redis（可选：连接失败时降级为内存批次存储，不中断启动）
	var rdb *redis.Client
	batchRepo := repository.NewMemoryBatchRepo()
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，批次改为保存在进程内存，限流不可用", zap.Error(err))
			rdb = nil
		} else {
			batchRepo = repository.NewRedisBatchRepo(rdb)
		}
	}

	// 5. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(batchRepo, parseJobRepo)
	svc := service.NewService(cfg, repo, service.NewPDFTextExtractor(), logger)
	h := handler.NewHandler(svc)

	// 6. 初始化路由
	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, rdb, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
