package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/klakung122/bucketlist-Public/internal/model"
)

// TopicMemberRepository 主题成员数据访问接口
type TopicMemberRepository interface {
	Exists(ctx context.Context, topicID, userID string) (bool, error)
	// Add 幂等插入成员关系
	// 已存在时不报错也不重复插入，返回本次是否真正新增了记录
	Add(ctx context.Context, topicID, userID string) (insertedNow bool, err error)
	Remove(ctx context.Context, topicID, userID string) error
	// ListByTopic 按加入时间升序列出成员（预加载用户信息）
	ListByTopic(ctx context.Context, topicID string) ([]model.TopicMember, error)
}

// topicMemberRepo TopicMemberRepository 的 GORM 实现
type topicMemberRepo struct {
	db *gorm.DB
}

// NewTopicMemberRepo 创建 TopicMemberRepository 实例
func NewTopicMemberRepo(db *gorm.DB) TopicMemberRepository {
	return &topicMemberRepo{db: db}
}

func (r *topicMemberRepo) Exists(ctx context.Context, topicID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TopicMember{}).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add 使用 INSERT ... ON CONFLICT DO NOTHING，复合主键兜底防重
func (r *topicMemberRepo) Add(ctx context.Context, topicID, userID string) (bool, error) {
	member := model.TopicMember{TopicID: topicID, UserID: userID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&member)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *topicMemberRepo) Remove(ctx context.Context, topicID, userID string) error {
	return r.db.WithContext(ctx).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		Delete(&model.TopicMember{}).Error
}

func (r *topicMemberRepo) ListByTopic(ctx context.Context, topicID string) ([]model.TopicMember, error) {
	var members []model.TopicMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("topic_id = ?", topicID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
