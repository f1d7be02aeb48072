package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/klakung122/bucketlist-Public/internal/model"
)

// InviteTokenRepository 邀请令牌数据访问接口
type InviteTokenRepository interface {
	Create(ctx context.Context, tok *model.InviteToken) error
	// GetByHashForUpdate 使用 SELECT ... FOR UPDATE 行级锁按哈希查询令牌
	// 必须在事务内调用（通过 Repository.WithTx 注入事务连接），
	// 并发兑换同一令牌时在该锁上串行化，配额检查才不会竞态
	GetByHashForUpdate(ctx context.Context, hash string) (*model.InviteToken, error)
	// ListByTopic 按创建时间倒序列出主题下的令牌
	ListByTopic(ctx context.Context, topicID string) ([]model.InviteToken, error)
	IncrementUsage(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// DeleteByTopic 删除指定主题下的单个令牌（属主校验后的显式撤销）
	DeleteByTopic(ctx context.Context, topicID, id string) (int64, error)
}

// inviteTokenRepo InviteTokenRepository 的 GORM 实现
type inviteTokenRepo struct {
	db *gorm.DB
}

// NewInviteTokenRepo 创建 InviteTokenRepository 实例
func NewInviteTokenRepo(db *gorm.DB) InviteTokenRepository {
	return &inviteTokenRepo{db: db}
}

func (r *inviteTokenRepo) Create(ctx context.Context, tok *model.InviteToken) error {
	return r.db.WithContext(ctx).Create(tok).Error
}

func (r *inviteTokenRepo) GetByHashForUpdate(ctx context.Context, hash string) (*model.InviteToken, error) {
	var tok model.InviteToken
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token_hash = ?", hash).
		First(&tok).Error
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (r *inviteTokenRepo) ListByTopic(ctx context.Context, topicID string) ([]model.InviteToken, error) {
	var toks []model.InviteToken
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at DESC").
		Find(&toks).Error
	if err != nil {
		return nil, err
	}
	return toks, nil
}

// IncrementUsage 原子递增使用次数
func (r *inviteTokenRepo) IncrementUsage(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.InviteToken{}).
		Where("invite_token_id = ?", id).
		Update("used_count", gorm.Expr("used_count + 1")).Error
}

func (r *inviteTokenRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("invite_token_id = ?", id).
		Delete(&model.InviteToken{}).Error
}

func (r *inviteTokenRepo) DeleteByTopic(ctx context.Context, topicID, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("invite_token_id = ? AND topic_id = ?", id, topicID).
		Delete(&model.InviteToken{})
	return result.RowsAffected, result.Error
}
