package repository

import (
	"context"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB 构造只渲染 SQL、不触库的 GORM 实例
func newDryRunDB(t *testing.T) (*gorm.DB, *string) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("初始化 DryRun DB 失败: %v", err)
	}

	var rendered string
	err = db.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		rendered = tx.Statement.SQL.String()
	})
	if err != nil {
		t.Fatalf("注册 SQL 捕获回调失败: %v", err)
	}
	return db, &rendered
}

// 兑换路径必须对令牌行加 FOR UPDATE 锁，
// 否则并发兑换会同时通过配额检查，超发成员资格
func TestInviteTokenGetByHashForUpdate_LocksRow(t *testing.T) {
	db, rendered := newDryRunDB(t)
	repo := NewInviteTokenRepo(db)

	repo.GetByHashForUpdate(context.Background(), "abc123")

	if *rendered == "" {
		t.Fatal("未捕获到渲染后的 SQL")
	}
	if !strings.Contains(*rendered, "FOR UPDATE") {
		t.Errorf("渲染 SQL 缺少 FOR UPDATE 锁子句: %s", *rendered)
	}
	if !strings.Contains(*rendered, "token_hash") {
		t.Errorf("渲染 SQL 缺少 token_hash 条件: %s", *rendered)
	}
}
