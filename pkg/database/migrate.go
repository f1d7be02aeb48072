package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations 启动时把 bucketlist 库表结构
// （users/topics/topic_members/invite_tokens/lists）迁移到最新版本
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	from, _, _ := m.Version()

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("执行迁移失败: %w", err)
		}
		logger.Info("bucketlist 库表结构已是最新", zap.Uint("version", from))
		return nil
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warn("bucketlist 库表迁移处于 dirty 状态，需要人工介入",
			zap.Uint("version", version))
		return nil
	}

	logger.Info("bucketlist 库表迁移完成",
		zap.Uint("from", from),
		zap.Uint("to", version),
	)
	return nil
}
