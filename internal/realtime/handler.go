package realtime

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/klakung122/bucketlist-Public/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域由 CORS 中间件统一把关，这里不做二次校验
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler WebSocket 接入端点
type Handler struct {
	hub       *Hub
	jwtMgr    *jwt.Manager
	authorize AuthorizeFunc
	logger    *zap.Logger
}

// NewHandler 创建 WebSocket 接入端点
// authorize 用于校验 join:topic 时的成员身份
func NewHandler(hub *Hub, jwtMgr *jwt.Manager, authorize AuthorizeFunc, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, jwtMgr: jwtMgr, authorize: authorize, logger: logger}
}

// Serve 处理 WebSocket 握手
// 身份凭证取 query 参数 token，或 Authorization: Bearer 头
func (h *Handler) Serve(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		auth := c.GetHeader("Authorization")
		if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
			tokenString = after
		}
	}
	if tokenString == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtMgr.ParseToken(tokenString)
	if err != nil || claims.TokenType != "access" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已写入 HTTP 错误响应
		h.logger.Warn("websocket 升级失败", zap.Error(err))
		return
	}

	s := newSession(h.hub, conn, claims.UserID, h.authorize, h.logger)
	go s.writeLoop()
	go s.readLoop()
}
