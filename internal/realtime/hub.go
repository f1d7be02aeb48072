package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// 频道命名约定
const (
	userChannelPrefix  = "user:"
	topicChannelPrefix = "topic:"
)

// Event 下行事件帧
type Event struct {
	Event   string      `json:"event"`
	Channel string      `json:"channel"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub 维护在线会话与频道订阅关系，负责事件扇出
// 所有方法并发安全；投递为尽力而为，会话发送队列满时丢帧并记录日志
type Hub struct {
	mu sync.RWMutex

	// sessions 全部在线会话
	sessions map[*Session]struct{}
	// channels 频道名 -> 订阅该频道的会话集合
	channels map[string]map[*Session]struct{}

	logger *zap.Logger
}

// NewHub 创建事件中心
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[*Session]struct{}),
		channels: make(map[string]map[*Session]struct{}),
		logger:   logger,
	}
}

// register 登记会话并自动订阅其用户私有频道
func (h *Hub) register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s] = struct{}{}
	h.subscribeLocked(s, userChannelPrefix+s.userID)
}

// unregister 注销会话并退出其全部频道
func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	for ch := range s.channels {
		h.leaveLocked(s, ch)
	}
}

// Subscribe 将会话加入主题频道
func (h *Hub) Subscribe(s *Session, slug string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribeLocked(s, topicChannelPrefix+slug)
}

// Unsubscribe 将会话移出主题频道
func (h *Hub) Unsubscribe(s *Session, slug string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s, topicChannelPrefix+slug)
}

func (h *Hub) subscribeLocked(s *Session, channel string) {
	set, ok := h.channels[channel]
	if !ok {
		set = make(map[*Session]struct{})
		h.channels[channel] = set
	}
	set[s] = struct{}{}
	s.channels[channel] = struct{}{}
}

func (h *Hub) leaveLocked(s *Session, channel string) {
	delete(s.channels, channel)
	set, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.channels, channel)
	}
}

// EmitToUser 向用户私有频道推送事件，实现 service.Notifier
func (h *Hub) EmitToUser(userID, event string, payload interface{}) {
	h.emit(userChannelPrefix+userID, event, payload)
}

// EmitToTopic 向主题频道推送事件，实现 service.Notifier
func (h *Hub) EmitToTopic(slug, event string, payload interface{}) {
	h.emit(topicChannelPrefix+slug, event, payload)
}

func (h *Hub) emit(channel, event string, payload interface{}) {
	frame, err := json.Marshal(Event{Event: event, Channel: channel, Payload: payload})
	if err != nil {
		h.logger.Error("事件序列化失败",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.channels[channel] {
		select {
		case s.send <- frame:
		default:
			// 发送队列已满，视为慢客户端，丢帧不阻塞其他订阅者
			h.logger.Warn("会话发送队列已满，丢弃事件",
				zap.String("user_id", s.userID),
				zap.String("channel", channel),
				zap.String("event", event))
		}
	}
}

// SessionCount 当前在线会话数
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
