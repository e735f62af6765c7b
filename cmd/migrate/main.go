package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/migrate"
)

func main() {
	var (
		action string
		steps  int
		dsn    string
	)
	flag.StringVar(&action, "action", "up", "迁移动作: up, down, version")
	flag.IntVar(&steps, "steps", 1, "down 回滚步数")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL 连接串（默认读取 database.dsn）")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if dsn == "" {
		dsn = cfg.Database.DSN
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch action {
	case "up":
		if err := migrate.Apply(ctx, dsn); err != nil {
			stdLog.Fatalf("迁移失败: %v", err)
		}
		logger.Infow("migrate_up_done")
	case "down":
		if err := migrate.Rollback(ctx, dsn, steps); err != nil {
			stdLog.Fatalf("回滚失败: %v", err)
		}
		logger.Infow("migrate_down_done", "steps", steps)
	case "version":
		version, dirty, err := migrate.Version(ctx, dsn)
		if err != nil {
			stdLog.Fatalf("读取迁移版本失败: %v", err)
		}
		logger.Infow("migrate_version", "version", version, "dirty", dirty)
	default:
		stdLog.Fatalf("未知迁移动作: %s", action)
	}
}
