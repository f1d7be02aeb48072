package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/klakung122/bucketlist-Public/internal/dto"
	"github.com/klakung122/bucketlist-Public/internal/model"
	"github.com/klakung122/bucketlist-Public/internal/repository"
)

// ── 清单模块业务错误 ──

var (
	ErrListNotFound       = errors.New("清单不存在")
	ErrListDuplicateTitle = errors.New("同一主题下已存在同名清单")
)

// ListService 清单业务接口
type ListService interface {
	// Create 在主题下创建清单（需要成员身份）
	// 标题唯一性由存储层约束兜底，冲突转换为 ErrListDuplicateTitle
	Create(ctx context.Context, slug string, req *dto.CreateListRequest, userID string) (*dto.ListResponse, error)
	// ListByTopic 列出主题下的清单（需要成员身份）
	ListByTopic(ctx context.Context, slug, userID string) ([]dto.ListResponse, error)
	// UpdateStatus 切换 active/archived（需要成员身份）
	UpdateStatus(ctx context.Context, listID string, req *dto.UpdateListStatusRequest, userID string) error
	// Delete 删除清单（需要成员身份）
	Delete(ctx context.Context, listID, userID string) error
}

type listService struct {
	repo     *repository.Repository
	access   AccessService
	notifier Notifier
	logger   *zap.Logger
}

// NewListService 创建 ListService 实例
func NewListService(repo *repository.Repository, access AccessService, notifier Notifier, logger *zap.Logger) ListService {
	return &listService{repo: repo, access: access, notifier: notifier, logger: logger}
}

func (s *listService) Create(ctx context.Context, slug string, req *dto.CreateListRequest, userID string) (*dto.ListResponse, error) {
	access, err := s.access.Authorize(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	if !access.IsMember {
		return nil, ErrForbidden
	}

	list := &model.List{
		TopicID:     access.Topic.TopicID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.ListStatusActive,
		CreatedBy:   userID,
	}
	if err := s.repo.List.Create(ctx, list); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrListDuplicateTitle
		}
		s.logger.Error("创建清单失败", zap.Error(err))
		return nil, err
	}

	resp := toListResponse(list)

	s.notifier.EmitToTopic(access.Topic.Slug, "lists:created", map[string]interface{}{
		"slug": access.Topic.Slug,
		"list": resp,
	})

	return resp, nil
}

func (s *listService) ListByTopic(ctx context.Context, slug, userID string) ([]dto.ListResponse, error) {
	access, err := s.access.Authorize(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	if !access.IsMember {
		return nil, ErrForbidden
	}

	lists, err := s.repo.List.ListByTopic(ctx, access.Topic.TopicID)
	if err != nil {
		s.logger.Error("列出清单失败", zap.String("topic_id", access.Topic.TopicID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ListResponse, 0, len(lists))
	for i := range lists {
		result = append(result, *toListResponse(&lists[i]))
	}
	return result, nil
}

func (s *listService) UpdateStatus(ctx context.Context, listID string, req *dto.UpdateListStatusRequest, userID string) error {
	list, access, err := s.authorizeList(ctx, listID, userID)
	if err != nil {
		return err
	}

	if err := s.repo.List.UpdateStatus(ctx, listID, req.Status); err != nil {
		s.logger.Error("更新清单状态失败", zap.String("list_id", listID), zap.Error(err))
		return err
	}

	s.notifier.EmitToTopic(access.Topic.Slug, "lists:updated", map[string]interface{}{
		"slug":    access.Topic.Slug,
		"list_id": list.ListID,
		"status":  req.Status,
	})

	return nil
}

func (s *listService) Delete(ctx context.Context, listID, userID string) error {
	list, access, err := s.authorizeList(ctx, listID, userID)
	if err != nil {
		return err
	}

	if err := s.repo.List.Delete(ctx, listID); err != nil {
		s.logger.Error("删除清单失败", zap.String("list_id", listID), zap.Error(err))
		return err
	}

	s.notifier.EmitToTopic(access.Topic.Slug, "lists:deleted", map[string]interface{}{
		"slug":    access.Topic.Slug,
		"list_id": list.ListID,
	})

	return nil
}

// authorizeList 按清单 ID 定位所属主题并检查成员身份
func (s *listService) authorizeList(ctx context.Context, listID, userID string) (*model.List, *TopicAccess, error) {
	list, err := s.repo.List.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrListNotFound
		}
		s.logger.Error("查询清单失败", zap.String("list_id", listID), zap.Error(err))
		return nil, nil, err
	}

	access, err := s.access.AuthorizeByID(ctx, list.TopicID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !access.IsMember {
		return nil, nil, ErrForbidden
	}

	return list, access, nil
}

// ── 内部辅助方法 ──

func toListResponse(l *model.List) *dto.ListResponse {
	return &dto.ListResponse{
		ID:          l.ListID,
		TopicID:     l.TopicID,
		Title:       l.Title,
		Description: l.Description,
		Status:      l.Status,
		Position:    l.Position,
		CreatedAt:   formatTime(l.CreatedAt),
	}
}
