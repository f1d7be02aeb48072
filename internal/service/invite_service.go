package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/klakung122/bucketlist-Public/config"
	"github.com/klakung122/bucketlist-Public/internal/dto"
	"github.com/klakung122/bucketlist-Public/internal/model"
	"github.com/klakung122/bucketlist-Public/internal/repository"
	"github.com/klakung122/bucketlist-Public/pkg/token"
)

// ── 邀请模块业务错误 ──

var (
	// ErrInviteInvalid 令牌不存在。已耗尽被删除的令牌与从未存在的令牌
	// 返回同一错误，调用方无法区分两者（不泄露令牌生命周期信息）
	ErrInviteInvalid       = errors.New("邀请令牌无效")
	ErrInviteExpired       = errors.New("邀请令牌已过期")
	ErrInviteQuotaExceeded = errors.New("邀请令牌使用次数已用尽")
	ErrInviteNotFound      = errors.New("邀请令牌不存在")
)

// InviteService 邀请业务接口
type InviteService interface {
	// Issue 签发邀请令牌（仅属主）；返回内嵌明文令牌的完整邀请链接，
	// 明文不持久化，签发后不可再次获取
	Issue(ctx context.Context, slug, requesterID string, req *dto.CreateInviteRequest) (*dto.InviteResponse, error)
	// ListByTopic 列出主题下的令牌（仅属主；不含哈希与明文）
	ListByTopic(ctx context.Context, slug, requesterID string) ([]dto.InviteTokenResponse, error)
	// Revoke 显式撤销令牌（仅属主）
	Revoke(ctx context.Context, slug, requesterID, tokenID string) error
	// Redeem 兑换令牌加入主题
	Redeem(ctx context.Context, secretPlain, userID string) (*dto.AcceptInviteResponse, error)
}

type inviteService struct {
	cfg      *config.Config
	repo     *repository.Repository
	access   AccessService
	notifier Notifier
	logger   *zap.Logger
}

// NewInviteService 创建 InviteService 实例
func NewInviteService(
	cfg *config.Config,
	repo *repository.Repository,
	access AccessService,
	notifier Notifier,
	logger *zap.Logger,
) InviteService {
	return &inviteService{
		cfg:      cfg,
		repo:     repo,
		access:   access,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *inviteService) Issue(ctx context.Context, slug, requesterID string, req *dto.CreateInviteRequest) (*dto.InviteResponse, error) {
	access, err := s.access.Authorize(ctx, slug, requesterID)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner {
		return nil, ErrForbidden
	}

	// 有效期：未传取默认天数；0 表示永不过期
	expiresDays := s.cfg.Invite.DefaultExpiresDays
	if req.ExpiresInDays != nil {
		expiresDays = *req.ExpiresInDays
	}
	var expiresAt *time.Time
	if expiresDays > 0 {
		t := time.Now().Add(time.Duration(expiresDays) * 24 * time.Hour)
		expiresAt = &t
	}

	secret, err := token.NewSecret()
	if err != nil {
		s.logger.Error("生成邀请令牌失败", zap.Error(err))
		return nil, err
	}

	tok := &model.InviteToken{
		TopicID:   access.Topic.TopicID,
		TokenHash: token.Hash(secret),
		MaxUses:   req.MaxUses,
		ExpiresAt: expiresAt,
		CreatedBy: requesterID,
	}
	if err := s.repo.InviteToken.Create(ctx, tok); err != nil {
		s.logger.Error("保存邀请令牌失败", zap.Error(err))
		return nil, err
	}

	return &dto.InviteResponse{
		InviteURL: s.inviteURL(secret),
		MaxUses:   req.MaxUses,
		ExpiresAt: formatTimePtr(expiresAt),
	}, nil
}

func (s *inviteService) ListByTopic(ctx context.Context, slug, requesterID string) ([]dto.InviteTokenResponse, error) {
	access, err := s.access.Authorize(ctx, slug, requesterID)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner {
		return nil, ErrForbidden
	}

	toks, err := s.repo.InviteToken.ListByTopic(ctx, access.Topic.TopicID)
	if err != nil {
		s.logger.Error("列出邀请令牌失败", zap.String("topic_id", access.Topic.TopicID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.InviteTokenResponse, 0, len(toks))
	for i := range toks {
		result = append(result, dto.InviteTokenResponse{
			ID:        toks[i].InviteTokenID,
			MaxUses:   toks[i].MaxUses,
			UsedCount: toks[i].UsedCount,
			ExpiresAt: formatTimePtr(toks[i].ExpiresAt),
			CreatedAt: formatTime(toks[i].CreatedAt),
		})
	}
	return result, nil
}

func (s *inviteService) Revoke(ctx context.Context, slug, requesterID, tokenID string) error {
	access, err := s.access.Authorize(ctx, slug, requesterID)
	if err != nil {
		return err
	}
	if !access.IsOwner {
		return ErrForbidden
	}

	affected, err := s.repo.InviteToken.DeleteByTopic(ctx, access.Topic.TopicID, tokenID)
	if err != nil {
		s.logger.Error("撤销邀请令牌失败", zap.String("token_id", tokenID), zap.Error(err))
		return err
	}
	if affected == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// Redeem 兑换状态机，整体在一个事务内执行：
//
//  1. 按明文哈希加行级锁查询令牌 → 不存在即 ErrInviteInvalid
//  2. 过期检查 → ErrInviteExpired（优先于配额检查）
//  3. 配额检查 → ErrInviteQuotaExceeded
//  4. 幂等写入成员关系；已是成员时 joinedNow=false 且不消耗令牌
//     （令牌语义是"可再接纳 N 名新成员"，不是"N 次兑换尝试"）
//  5. 仅在 joinedNow 时消耗配额；本次使用耗尽配额时直接删除令牌行，
//     之后再兑换与从未存在的令牌表现完全一致
//
// 事务提交成功且确实新加入后，才向相关频道推送事件；
// 推送失败只记录日志，不影响已提交的成员关系
func (s *inviteService) Redeem(ctx context.Context, secretPlain, userID string) (*dto.AcceptInviteResponse, error) {
	hash := token.Hash(secretPlain)

	var (
		topic     *model.Topic
		joinedNow bool
	)

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		tok, err := tx.InviteToken.GetByHashForUpdate(ctx, hash)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteInvalid
			}
			return err
		}

		now := time.Now()
		if tok.Expired(now) {
			return ErrInviteExpired
		}
		if tok.Exhausted() {
			return ErrInviteQuotaExceeded
		}

		joinedNow, err = tx.TopicMember.Add(ctx, tok.TopicID, userID)
		if err != nil {
			return err
		}

		if joinedNow {
			if tok.MaxUses != nil && tok.UsedCount+1 >= *tok.MaxUses {
				// 本次使用耗尽配额：删除令牌行（消耗即删除策略）
				if err := tx.InviteToken.Delete(ctx, tok.InviteTokenID); err != nil {
					return err
				}
			} else {
				if err := tx.InviteToken.IncrementUsage(ctx, tok.InviteTokenID); err != nil {
					return err
				}
			}
		}

		topic, err = tx.Topic.GetByID(ctx, tok.TopicID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInviteInvalid) || errors.Is(err, ErrInviteExpired) || errors.Is(err, ErrInviteQuotaExceeded) {
			return nil, err
		}
		s.logger.Error("兑换邀请令牌失败", zap.Error(err))
		return nil, err
	}

	if joinedNow {
		s.fanoutJoined(ctx, topic, userID)
	}

	return &dto.AcceptInviteResponse{
		TopicID:   topic.TopicID,
		Slug:      topic.Slug,
		JoinedNow: joinedNow,
	}, nil
}

// fanoutJoined 成员加入后的实时通知
// (a) 新成员的私有频道收到主题摘要，侧边栏可立即展示
// (b) 主题频道的订阅者收到新成员事件
func (s *inviteService) fanoutJoined(ctx context.Context, topic *model.Topic, userID string) {
	username := ""
	if user, err := s.repo.User.GetByID(ctx, userID); err == nil {
		username = user.Username
	} else {
		s.logger.Warn("查询新成员信息失败", zap.String("user_id", userID), zap.Error(err))
	}

	s.notifier.EmitToUser(userID, "topics:created", map[string]interface{}{
		"topic": map[string]interface{}{
			"id":          topic.TopicID,
			"title":       topic.Title,
			"description": topic.Description,
			"slug":        topic.Slug,
		},
	})

	s.notifier.EmitToTopic(topic.Slug, "members:added", map[string]interface{}{
		"slug": topic.Slug,
		"user": map[string]interface{}{
			"id":       userID,
			"username": username,
		},
	})
}

func (s *inviteService) inviteURL(secret string) string {
	return strings.TrimRight(s.cfg.Server.BaseURL, "/") + "/join/" + secret
}

// formatTime 统一转 UTC 后输出，数据库会话时区不泄漏到响应
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
