package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/klakung122/bucketlist-Public/internal/model"
)

// TopicRepository 主题数据访问接口
type TopicRepository interface {
	Create(ctx context.Context, topic *model.Topic) error
	GetByID(ctx context.Context, id string) (*model.Topic, error)
	GetBySlug(ctx context.Context, slug string) (*model.Topic, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// ListByMember 列出用户加入的所有主题（含其拥有的），新创建的在前
	ListByMember(ctx context.Context, userID string) ([]model.Topic, error)
	// ListByOwner 列出用户拥有的主题，新创建的在前
	ListByOwner(ctx context.Context, userID string) ([]model.Topic, error)
	UpdateTitle(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
}

// topicRepo TopicRepository 的 GORM 实现
type topicRepo struct {
	db *gorm.DB
}

// NewTopicRepo 创建 TopicRepository 实例
func NewTopicRepo(db *gorm.DB) TopicRepository {
	return &topicRepo{db: db}
}

func (r *topicRepo) Create(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepo) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) GetBySlug(ctx context.Context, slug string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Topic{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *topicRepo) ListByMember(ctx context.Context, userID string) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN topic_members m ON m.topic_id = topics.topic_id").
		Where("m.user_id = ?", userID).
		Order("topics.created_at DESC").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) ListByOwner(ctx context.Context, userID string) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) UpdateTitle(ctx context.Context, id, title string) error {
	return r.db.WithContext(ctx).
		Model(&model.Topic{}).
		Where("topic_id = ?", id).
		Update("title", title).Error
}

// Delete 删除主题；清单、成员与邀请令牌由外键级联删除
func (r *topicRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("topic_id = ?", id).
		Delete(&model.Topic{}).Error
}
