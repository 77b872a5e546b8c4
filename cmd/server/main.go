package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-records/config"
	"student-records/internal/api/handler"
	"student-records/internal/api/router"
	"student-records/internal/repository"
	"student-records/internal/service"
	"student-records/pkg/database"
	"student-records/pkg/jwt"
	applogger "student-records/pkg/logger"
	"student-records/pkg/redis"
	"student-records/pkg/sheets"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
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

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("sheet_driver", cfg.Sheet.Driver),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 建表：postgres / mysql 走版本化迁移，sqlite 走 GORM AutoMigrate
	if cfg.Database.Driver == "sqlite" {
		if cfg.Database.AutoMigrate {
			if err := repository.AutoMigrate(db); err != nil {
				logger.Fatal("自动建表失败", zap.Error(err))
			}
		}
	} else {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, cfg.Database.Driver, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与同步状态记录将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器与表格客户端工厂
	jwtMgr := jwt.NewManager(&cfg.Auth)

	sheetFactory, err := sheets.NewFactory(&cfg.Sheet)
	if err != nil {
		logger.Fatal("初始化表格客户端失败", zap.Error(err))
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, sheetFactory, rdb, logger)

	// 6.1 字典与默认账号
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := svc.Lookup.EnsureDepartments(initCtx, cfg.Seed.Departments); err != nil {
		logger.Fatal("初始化院系失败", zap.Error(err))
	}
	if err := svc.Auth.EnsureDefaultUsers(initCtx); err != nil {
		logger.Fatal("初始化默认账号失败", zap.Error(err))
	}
	cancelInit()

	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Sheet.Timeout + 30*time.Second, // 同步请求会等待外部表格
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
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
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
