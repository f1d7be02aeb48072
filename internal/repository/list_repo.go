package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/klakung122/bucketlist-Public/internal/model"
)

// ListRepository 清单数据访问接口
type ListRepository interface {
	Create(ctx context.Context, list *model.List) error
	GetByID(ctx context.Context, id string) (*model.List, error)
	// ListByTopic 按 position 升序、创建时间倒序列出主题下的清单
	ListByTopic(ctx context.Context, topicID string) ([]model.List, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// listRepo ListRepository 的 GORM 实现
type listRepo struct {
	db *gorm.DB
}

// NewListRepo 创建 ListRepository 实例
func NewListRepo(db *gorm.DB) ListRepository {
	return &listRepo{db: db}
}

func (r *listRepo) Create(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *listRepo) GetByID(ctx context.Context, id string) (*model.List, error) {
	var list model.List
	err := r.db.WithContext(ctx).
		Where("list_id = ?", id).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *listRepo) ListByTopic(ctx context.Context, topicID string) ([]model.List, error) {
	var lists []model.List
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("position ASC, created_at DESC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *listRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.List{}).
		Where("list_id = ?", id).
		Update("status", status).Error
}

func (r *listRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("list_id = ?", id).
		Delete(&model.List{}).Error
}
