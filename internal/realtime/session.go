package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// 单帧写超时
	writeWait = 10 * time.Second
	// 等待对端 pong 的最长时间
	pongWait = 55 * time.Second
	// ping 间隔，必须小于 pongWait
	pingPeriod = 30 * time.Second
	// 上行帧大小上限
	maxMessageSize = 1 << 12
	// 会话发送队列容量，写满即视为慢客户端
	sendQueueSize = 128
)

// clientMessage 上行控制帧
// action 取值 join:topic / leave:topic，topic 为主题 slug
type clientMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// AuthorizeFunc 校验 userID 是否有权订阅 slug 对应主题频道
type AuthorizeFunc func(slug, userID string) error

// Session 单个 WebSocket 连接的服务端会话
type Session struct {
	hub  *Hub
	conn *websocket.Conn

	userID string

	// send 下行帧队列，由 writeLoop 独占消费
	send chan []byte
	// channels 已订阅频道集合，由 hub 的锁保护
	channels map[string]struct{}

	authorize AuthorizeFunc
	logger    *zap.Logger
}

// newSession 创建会话并登记到 hub
func newSession(hub *Hub, conn *websocket.Conn, userID string, authorize AuthorizeFunc, logger *zap.Logger) *Session {
	s := &Session{
		hub:       hub,
		conn:      conn,
		userID:    userID,
		send:      make(chan []byte, sendQueueSize),
		channels:  make(map[string]struct{}),
		authorize: authorize,
		logger:    logger,
	}
	hub.register(s)
	return s
}

// readLoop 消费上行帧直到连接关闭
// 每个连接仅允许一个 reader，退出时负责注销会话
func (s *Session) readLoop() {
	defer func() {
		s.hub.unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket 异常断开",
					zap.String("user_id", s.userID),
					zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.replyError(msg.Topic, "消息格式错误")
			continue
		}
		s.handleMessage(&msg)
	}
}

// handleMessage 处理频道订阅控制帧
func (s *Session) handleMessage(msg *clientMessage) {
	switch msg.Action {
	case "join:topic":
		if msg.Topic == "" {
			s.replyError(msg.Topic, "缺少主题标识")
			return
		}
		// 订阅前校验成员身份，非成员不得进入主题频道
		if err := s.authorize(msg.Topic, s.userID); err != nil {
			s.replyError(msg.Topic, "无权订阅该主题")
			return
		}
		s.hub.Subscribe(s, msg.Topic)
		s.replyAck("joined:topic", msg.Topic)
	case "leave:topic":
		if msg.Topic == "" {
			return
		}
		s.hub.Unsubscribe(s, msg.Topic)
		s.replyAck("left:topic", msg.Topic)
	default:
		s.replyError(msg.Topic, "未知操作")
	}
}

func (s *Session) replyAck(event, slug string) {
	s.enqueue(Event{Event: event, Channel: topicChannelPrefix + slug})
}

func (s *Session) replyError(slug, message string) {
	s.enqueue(Event{
		Event:   "error",
		Channel: topicChannelPrefix + slug,
		Payload: map[string]string{"message": message},
	})
}

func (s *Session) enqueue(ev Event) {
	frame, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case s.send <- frame:
	default:
	}
}

// writeLoop 独占写连接，按 pingPeriod 发送心跳
func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
