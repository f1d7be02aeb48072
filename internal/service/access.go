package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/klakung122/bucketlist-Public/internal/model"
	"github.com/klakung122/bucketlist-Public/internal/repository"
)

// ── 授权相关业务错误 ──

var (
	ErrTopicNotFound = errors.New("主题不存在")
	ErrForbidden     = errors.New("无权访问该主题")
)

// TopicAccess 主题授权结果
// IsMember 对属主恒为 true：属主无需显式成员记录即可操作主题
type TopicAccess struct {
	Topic    *model.Topic
	IsOwner  bool
	IsMember bool
}

// AccessService 主题授权网关
// "属主或成员" 的判定集中在这里，所有主题/清单/邀请的写操作
// 在改变状态前都必须经过该网关
type AccessService interface {
	// Authorize 按 slug 计算用户对主题的权限；主题不存在返回 ErrTopicNotFound
	Authorize(ctx context.Context, slug, userID string) (*TopicAccess, error)
	// AuthorizeByID 按主题 ID 计算权限（清单按 ID 操作时使用）
	AuthorizeByID(ctx context.Context, topicID, userID string) (*TopicAccess, error)
}

type accessService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAccessService 创建 AccessService 实例
func NewAccessService(repo *repository.Repository, logger *zap.Logger) AccessService {
	return &accessService{repo: repo, logger: logger}
}

func (s *accessService) Authorize(ctx context.Context, slug, userID string) (*TopicAccess, error) {
	topic, err := s.repo.Topic.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("查询主题失败", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return s.resolve(ctx, topic, userID)
}

func (s *accessService) AuthorizeByID(ctx context.Context, topicID, userID string) (*TopicAccess, error) {
	topic, err := s.repo.Topic.GetByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("查询主题失败", zap.String("topic_id", topicID), zap.Error(err))
		return nil, err
	}
	return s.resolve(ctx, topic, userID)
}

func (s *accessService) resolve(ctx context.Context, topic *model.Topic, userID string) (*TopicAccess, error) {
	access := &TopicAccess{Topic: topic}

	if topic.OwnerID == userID {
		access.IsOwner = true
		access.IsMember = true
		return access, nil
	}

	isMember, err := s.repo.TopicMember.Exists(ctx, topic.TopicID, userID)
	if err != nil {
		s.logger.Error("查询成员关系失败",
			zap.String("topic_id", topic.TopicID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	access.IsMember = isMember

	return access, nil
}
