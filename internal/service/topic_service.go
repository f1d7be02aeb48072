package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/klakung122/bucketlist-Public/internal/dto"
	"github.com/klakung122/bucketlist-Public/internal/model"
	"github.com/klakung122/bucketlist-Public/internal/repository"
)

// ── 主题模块业务错误 ──

var (
	ErrDuplicateSlug    = errors.New("主题 slug 冲突")
	ErrOwnerCannotLeave = errors.New("属主不能退出自己的主题")
)

// slug 候选冲突时的最大重试轮数（每轮追加 -n 后缀）
const slugMaxAttempts = 10

// TopicService 主题业务接口
type TopicService interface {
	// Create 创建主题；属主在同一事务内写入成员表，立即成为成员
	Create(ctx context.Context, req *dto.CreateTopicRequest, ownerID, ownerUsername string) (*dto.TopicResponse, error)
	// ListMine 列出用户加入的全部主题
	ListMine(ctx context.Context, userID string) ([]dto.TopicResponse, error)
	// ListOwned 列出用户拥有的主题
	ListOwned(ctx context.Context, userID string) ([]dto.TopicResponse, error)
	// GetBySlug 查看主题详情（需要成员身份）
	GetBySlug(ctx context.Context, slug, userID string) (*dto.TopicResponse, error)
	// UpdateTitle 更新标题（仅属主）
	UpdateTitle(ctx context.Context, slug string, req *dto.UpdateTopicRequest, userID string) error
	// Delete 删除主题（仅属主）；清单、成员、令牌级联删除
	Delete(ctx context.Context, slug, userID string) error
	// ListMembers 按加入时间列出主题成员（需要成员身份）
	ListMembers(ctx context.Context, slug, userID string) ([]dto.TopicMemberResponse, error)
	// Leave 成员退出主题；属主不能退出自己的主题
	Leave(ctx context.Context, slug, userID string) error
}

type topicService struct {
	repo     *repository.Repository
	access   AccessService
	notifier Notifier
	logger   *zap.Logger
}

// NewTopicService 创建 TopicService 实例
func NewTopicService(repo *repository.Repository, access AccessService, notifier Notifier, logger *zap.Logger) TopicService {
	return &topicService{repo: repo, access: access, notifier: notifier, logger: logger}
}

func (s *topicService) Create(ctx context.Context, req *dto.CreateTopicRequest, ownerID, ownerUsername string) (*dto.TopicResponse, error) {
	var topic *model.Topic

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		slug, err := s.uniqueSlug(ctx, tx, ownerUsername)
		if err != nil {
			return err
		}

		topic = &model.Topic{
			Slug:        slug,
			Title:       req.Title,
			Description: req.Description,
			OwnerID:     ownerID,
		}
		if err := tx.Topic.Create(ctx, topic); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSlug
			}
			return err
		}

		// 属主立即入成员表，成员列表与授权判定保持一致
		if _, err := tx.TopicMember.Add(ctx, topic.TopicID, ownerID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrDuplicateSlug) {
			s.logger.Error("创建主题失败", zap.Error(err))
		}
		return nil, err
	}

	return toTopicResponse(topic), nil
}

// uniqueSlug 生成唯一 slug：冲突时追加 -2、-3 …… 后缀重试
func (s *topicService) uniqueSlug(ctx context.Context, tx *repository.Repository, username string) (string, error) {
	base, err := newTopicSlugBase(username)
	if err != nil {
		return "", err
	}

	candidate := base
	for n := 2; n <= slugMaxAttempts+1; n++ {
		exists, err := tx.Topic.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", ErrDuplicateSlug
}

func (s *topicService) ListMine(ctx context.Context, userID string) ([]dto.TopicResponse, error) {
	topics, err := s.repo.Topic.ListByMember(ctx, userID)
	if err != nil {
		s.logger.Error("列出主题失败", zap.Error(err))
		return nil, err
	}
	return toTopicResponses(topics), nil
}

func (s *topicService) ListOwned(ctx context.Context, userID string) ([]dto.TopicResponse, error) {
	topics, err := s.repo.Topic.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("列出主题失败", zap.Error(err))
		return nil, err
	}
	return toTopicResponses(topics), nil
}

func (s *topicService) GetBySlug(ctx context.Context, slug, userID string) (*dto.TopicResponse, error) {
	access, err := s.access.Authorize(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	if !access.IsMember {
		return nil, ErrForbidden
	}
	return toTopicResponse(access.Topic), nil
}

func (s *topicService) UpdateTitle(ctx context.Context, slug string, req *dto.UpdateTopicRequest, userID string) error {
	access, err := s.access.Authorize(ctx, slug, userID)
	if err != nil {
		return err
	}
	if !access.IsOwner {
		return ErrForbidden
	}

	if err := s.repo.Topic.UpdateTitle(ctx, access.Topic.TopicID, req.Title); err != nil {
		s.logger.Error("更新主题标题失败", zap.String("topic_id", access.Topic.TopicID), zap.Error(err))
		return err
	}
	return nil
}

func (s *topicService) Delete(ctx context.Context, slug, userID string) error {
	access, err := s.access.Authorize(ctx, slug, userID)
	if err != nil {
		return err
	}
	if !access.IsOwner {
		return ErrForbidden
	}

	if err := s.repo.Topic.Delete(ctx, access.Topic.TopicID); err != nil {
		s.logger.Error("删除主题失败", zap.String("topic_id", access.Topic.TopicID), zap.Error(err))
		return err
	}
	return nil
}

func (s *topicService) ListMembers(ctx context.Context, slug, userID string) ([]dto.TopicMemberResponse, error) {
	access, err := s.access.Authorize(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	if !access.IsMember {
		return nil, ErrForbidden
	}

	members, err := s.repo.TopicMember.ListByTopic(ctx, access.Topic.TopicID)
	if err != nil {
		s.logger.Error("列出成员失败", zap.String("topic_id", access.Topic.TopicID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TopicMemberResponse, 0, len(members))
	for i := range members {
		m := dto.TopicMemberResponse{
			UserID:   members[i].UserID,
			JoinedAt: formatTime(members[i].JoinedAt),
		}
		if members[i].User != nil {
			m.Username = members[i].User.Username
			m.ProfileImage = members[i].User.ProfileImage
		}
		result = append(result, m)
	}
	return result, nil
}

func (s *topicService) Leave(ctx context.Context, slug, userID string) error {
	access, err := s.access.Authorize(ctx, slug, userID)
	if err != nil {
		return err
	}
	if access.IsOwner {
		return ErrOwnerCannotLeave
	}
	if !access.IsMember {
		return ErrForbidden
	}

	if err := s.repo.TopicMember.Remove(ctx, access.Topic.TopicID, userID); err != nil {
		s.logger.Error("退出主题失败",
			zap.String("topic_id", access.Topic.TopicID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	s.notifier.EmitToTopic(slug, "members:removed", map[string]interface{}{
		"slug":    slug,
		"user_id": userID,
	})
	return nil
}

// ── 内部辅助方法 ──

func toTopicResponse(t *model.Topic) *dto.TopicResponse {
	return &dto.TopicResponse{
		ID:          t.TopicID,
		Slug:        t.Slug,
		Title:       t.Title,
		Description: t.Description,
		OwnerID:     t.OwnerID,
		CreatedAt:   formatTime(t.CreatedAt),
	}
}

func toTopicResponses(topics []model.Topic) []dto.TopicResponse {
	result := make([]dto.TopicResponse, 0, len(topics))
	for i := range topics {
		result = append(result, *toTopicResponse(&topics[i]))
	}
	return result
}
