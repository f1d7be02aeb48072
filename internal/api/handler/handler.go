package handler

import "github.com/klakung122/bucketlist-Public/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth   *AuthHandler
	Topic  *TopicHandler
	List   *ListHandler
	Invite *InviteHandler
	Export *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Topic:  NewTopicHandler(svc.Topic),
		List:   NewListHandler(svc.List),
		Invite: NewInviteHandler(svc.Invite),
		Export: NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
