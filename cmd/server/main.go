package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/api/handler"
	"campus-portal/backend/internal/api/router"
	"campus-portal/backend/internal/repository"
	"campus-portal/backend/internal/seed"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/database"
	"campus-portal/backend/pkg/jwt"
	applogger "campus-portal/backend/pkg/logger"
	"campus-portal/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("CAMPUS_CONFIG"))
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
		zap.String("storage", cfg.Storage.Driver),
		zap.String("auth_provider", cfg.Auth.Provider),
	)

	// 3. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 4. 业务数据存储
	var (
		db   *gorm.DB
		repo *repository.Repository
	)
	switch cfg.Storage.Driver {
	case "database":
		db, err = database.NewDB(&cfg.Database, cfg.Log.Level, logger)
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
		repo = repository.NewRepository(db)
	default:
		repo = repository.NewMemoryRepository(seed.DemoUsers())
		logger.Info("使用内存存储，重启后数据丢失")
	}

	// 4.1 会话存储
	if cfg.Session.Store == "redis" {
		if rdb != nil {
			repo.Session = repository.NewRedisSessionRepo(rdb)
		} else {
			logger.Warn("Redis 不可用，会话改存内存")
		}
	}

	// 4.2 课表存储
	timetableDB, err := setupTimetableStore(cfg, repo, db, rdb, logger)
	if err != nil {
		logger.Fatal("初始化课表存储失败", zap.Error(err))
	}

	// 4.3 演示数据
	if cfg.Storage.SeedDemo {
		if err := loadDemoData(cfg, repo, logger); err != nil {
			logger.Fatal("初始化演示数据失败", zap.Error(err))
		}
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine, err := router.Setup(cfg, h, jwtMgr, svc.Auth, rdb, logger)
	if err != nil {
		logger.Fatal("初始化路由失败", zap.Error(err))
	}

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}
	if timetableDB != nil {
		timetableDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// setupTimetableStore 按 timetable.store 选择课表后端；依赖不可用时回落到内存实现。
// sqlite 模式返回打开的连接，由调用方负责关闭。
func setupTimetableStore(cfg *config.Config, repo *repository.Repository, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) (*sql.DB, error) {
	switch cfg.Timetable.Store {
	case "sqlite":
		sqliteDB, err := database.OpenSQLite(cfg.Timetable.SQLitePath)
		if err != nil {
			return nil, err
		}
		store, err := repository.NewSQLiteTimetableRepo(context.Background(), sqliteDB)
		if err != nil {
			sqliteDB.Close()
			return nil, err
		}
		repo.Timetable = store
		logger.Info("课表使用 SQLite 存储", zap.String("path", cfg.Timetable.SQLitePath))
		return sqliteDB, nil
	case "redis":
		if rdb == nil {
			repo.Timetable = repository.NewMemoryTimetableRepo()
			logger.Warn("Redis 不可用，课表改存内存")
			return nil, nil
		}
		repo.Timetable = repository.NewRedisTimetableRepo(rdb, cfg.Timetable.StorageKey)
		logger.Info("课表使用 Redis 存储", zap.String("key_prefix", cfg.Timetable.StorageKey))
		return nil, nil
	default:
		if db == nil {
			repo.Timetable = repository.NewMemoryTimetableRepo()
			logger.Info("未启用数据库，课表改存内存")
		}
		return nil, nil
	}
}

// loadDemoData 写入演示数据；数据库提供方下演示账号使用 bcrypt 哈希后的演示密码
func loadDemoData(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) error {
	var passwordHash string
	if cfg.Auth.Provider == config.ProviderDatabase {
		cost := cfg.Auth.BcryptCost
		if cost < bcrypt.MinCost {
			cost = bcrypt.DefaultCost
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.DemoPassword), cost)
		if err != nil {
			return fmt.Errorf("生成演示密码哈希失败: %w", err)
		}
		passwordHash = string(hash)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return seed.Load(ctx, repo, passwordHash, time.Now(), logger)
}
