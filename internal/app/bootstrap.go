package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/migrate"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/router"
	"github.com/storefront-next/internal/worker"
)

// PrepareDatabase 初始化数据库连接并按配置执行迁移
func PrepareDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.Mode == "debug"); err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	switch cfg.Database.Migrate {
	case "none":
		logger.Infow("database_migrate_skipped")
		return nil
	case "sql":
		if !isPostgresDriver(cfg.Database.Driver) {
			return fmt.Errorf("sql migrations require postgres, got driver %q", cfg.Database.Driver)
		}
		if err := migrate.Apply(ctx, cfg.Database.DSN); err != nil {
			return err
		}
		logger.Infow("database_migrate_applied", "mode", "sql")
		return nil
	default:
		if err := models.AutoMigrate(); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		logger.Infow("database_migrate_applied", "mode", "auto")
		return nil
	}
}

func isPostgresDriver(driver string) bool {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string, container *provider.Container) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		switch {
		case cfg.Queue.Enabled:
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		case mode == ModeWorker:
			return nil, errors.New("worker mode requires queue.enabled")
		default:
			// 队列关闭时价格修复审计仅写日志
			logger.Warnw("app_worker_skipped_queue_disabled")
		}
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no services initialized for mode %q", mode)
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if _, err := ParseMode(opts.Mode); err != nil {
		return err
	}

	if err := PrepareDatabase(context.Background(), opts.Config); err != nil {
		return err
	}
	container := provider.NewContainer(opts.Config)
	defer func() {
		if err := container.QueueClient.Close(); err != nil {
			opts.Logger.Warnw("app_queue_client_close_failed", "error", err)
		}
	}()

	runner, err := BuildRunner(opts.Config, opts.Mode, container)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
