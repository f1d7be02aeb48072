package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/klakung122/bucketlist-Public/config"
	"github.com/klakung122/bucketlist-Public/internal/model"
	"github.com/klakung122/bucketlist-Public/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock TopicRepository ──

type mockTopicRepo struct {
	topics map[string]*model.Topic
	seq    int
	// members 引用成员 mock 以支持 ListByMember 联表语义
	members *mockTopicMemberRepo
}

func newMockTopicRepo(members *mockTopicMemberRepo) *mockTopicRepo {
	return &mockTopicRepo{topics: make(map[string]*model.Topic), members: members}
}

func (m *mockTopicRepo) Create(_ context.Context, topic *model.Topic) error {
	for _, t := range m.topics {
		if t.Slug == topic.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	if topic.TopicID == "" {
		m.seq++
		topic.TopicID = fmt.Sprintf("topic-%d", m.seq)
	}
	topic.CreatedAt = time.Now()
	m.topics[topic.TopicID] = topic
	return nil
}

func (m *mockTopicRepo) GetByID(_ context.Context, id string) (*model.Topic, error) {
	if t, ok := m.topics[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) GetBySlug(_ context.Context, slug string) (*model.Topic, error) {
	for _, t := range m.topics {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, t := range m.topics {
		if t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTopicRepo) ListByMember(ctx context.Context, userID string) ([]model.Topic, error) {
	var result []model.Topic
	for _, t := range m.topics {
		joined, _ := m.members.Exists(ctx, t.TopicID, userID)
		if joined || t.OwnerID == userID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TopicID > result[j].TopicID })
	return result, nil
}

func (m *mockTopicRepo) ListByOwner(_ context.Context, userID string) ([]model.Topic, error) {
	var result []model.Topic
	for _, t := range m.topics {
		if t.OwnerID == userID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TopicID > result[j].TopicID })
	return result, nil
}

func (m *mockTopicRepo) UpdateTitle(_ context.Context, id, title string) error {
	t, ok := m.topics[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Title = title
	return nil
}

func (m *mockTopicRepo) Delete(_ context.Context, id string) error {
	delete(m.topics, id)
	return nil
}

// ── Mock TopicMemberRepository ──

type mockTopicMemberRepo struct {
	mu      sync.Mutex
	members map[string]time.Time // key: topicID + "/" + userID
}

func newMockTopicMemberRepo() *mockTopicMemberRepo {
	return &mockTopicMemberRepo{members: make(map[string]time.Time)}
}

func memberKey(topicID, userID string) string { return topicID + "/" + userID }

func (m *mockTopicMemberRepo) Exists(_ context.Context, topicID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.members[memberKey(topicID, userID)]
	return ok, nil
}

func (m *mockTopicMemberRepo) Add(_ context.Context, topicID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memberKey(topicID, userID)
	if _, ok := m.members[key]; ok {
		return false, nil
	}
	m.members[key] = time.Now()
	return true, nil
}

func (m *mockTopicMemberRepo) Remove(_ context.Context, topicID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, memberKey(topicID, userID))
	return nil
}

func (m *mockTopicMemberRepo) ListByTopic(_ context.Context, topicID string) ([]model.TopicMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TopicMember
	for key, joinedAt := range m.members {
		var tid, uid string
		for i := 0; i < len(key); i++ {
			if key[i] == '/' {
				tid, uid = key[:i], key[i+1:]
				break
			}
		}
		if tid == topicID {
			result = append(result, model.TopicMember{TopicID: tid, UserID: uid, JoinedAt: joinedAt})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].JoinedAt.Before(result[j].JoinedAt) })
	return result, nil
}

// ── Mock InviteTokenRepository ──

type mockInviteTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.InviteToken
	seq    int
}

func newMockInviteTokenRepo() *mockInviteTokenRepo {
	return &mockInviteTokenRepo{tokens: make(map[string]*model.InviteToken)}
}

func (m *mockInviteTokenRepo) Create(_ context.Context, tok *model.InviteToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tok.InviteTokenID == "" {
		m.seq++
		tok.InviteTokenID = fmt.Sprintf("tok-%d", m.seq)
	}
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = time.Now()
	}
	m.tokens[tok.InviteTokenID] = tok
	return nil
}

func (m *mockInviteTokenRepo) GetByHashForUpdate(_ context.Context, hash string) (*model.InviteToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteTokenRepo) ListByTopic(_ context.Context, topicID string) ([]model.InviteToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.InviteToken
	for _, t := range m.tokens {
		if t.TopicID == topicID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockInviteTokenRepo) IncrementUsage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.UsedCount++
	return nil
}

func (m *mockInviteTokenRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}

func (m *mockInviteTokenRepo) DeleteByTopic(_ context.Context, topicID, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.TopicID != topicID {
		return 0, nil
	}
	delete(m.tokens, id)
	return 1, nil
}

// ── Mock ListRepository ──

type mockListRepo struct {
	lists map[string]*model.List
	seq   int
}

func newMockListRepo() *mockListRepo {
	return &mockListRepo{lists: make(map[string]*model.List)}
}

func (m *mockListRepo) Create(_ context.Context, list *model.List) error {
	for _, l := range m.lists {
		if l.TopicID == list.TopicID && l.Title == list.Title {
			return gorm.ErrDuplicatedKey
		}
	}
	if list.ListID == "" {
		m.seq++
		list.ListID = fmt.Sprintf("list-%d", m.seq)
	}
	list.CreatedAt = time.Now()
	m.lists[list.ListID] = list
	return nil
}

func (m *mockListRepo) GetByID(_ context.Context, id string) (*model.List, error) {
	if l, ok := m.lists[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockListRepo) ListByTopic(_ context.Context, topicID string) ([]model.List, error) {
	var result []model.List
	for _, l := range m.lists {
		if l.TopicID == topicID {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockListRepo) UpdateStatus(_ context.Context, id, status string) error {
	l, ok := m.lists[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.Status = status
	return nil
}

func (m *mockListRepo) Delete(_ context.Context, id string) error {
	delete(m.lists, id)
	return nil
}

// ── 事件捕获 Notifier ──

type capturedEvent struct {
	Target  string // "user:<id>" 或 "topic:<slug>"
	Event   string
	Payload interface{}
}

type captureNotifier struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (n *captureNotifier) EmitToUser(userID, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, capturedEvent{Target: "user:" + userID, Event: event, Payload: payload})
}

func (n *captureNotifier) EmitToTopic(slug, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, capturedEvent{Target: "topic:" + slug, Event: event, Payload: payload})
}

func (n *captureNotifier) byEvent(event string) []capturedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []capturedEvent
	for _, e := range n.events {
		if e.Event == event {
			result = append(result, e)
		}
	}
	return result
}

// ── 测试夹具 ──

type testRepos struct {
	users   *mockUserRepo
	topics  *mockTopicRepo
	members *mockTopicMemberRepo
	invites *mockInviteTokenRepo
	lists   *mockListRepo
}

// newTestRepository 构造接入全部 mock 的仓储聚合
// db 为空时 WithTx 直接在当前聚合上执行，无需真实数据库
func newTestRepository() (*repository.Repository, *testRepos) {
	members := newMockTopicMemberRepo()
	mocks := &testRepos{
		users:   newMockUserRepo(),
		topics:  newMockTopicRepo(members),
		members: members,
		invites: newMockInviteTokenRepo(),
		lists:   newMockListRepo(),
	}
	repo := &repository.Repository{
		User:        mocks.users,
		Topic:       mocks.topics,
		TopicMember: mocks.members,
		InviteToken: mocks.invites,
		List:        mocks.lists,
	}
	return repo, mocks
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:    4000,
			BaseURL: "http://localhost:3000",
		},
		Auth: config.AuthConfig{
			JWTSecret:       "unit-test-secret-0123456789",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
			BcryptCost:      4, // 测试用最低成本
		},
		Invite: config.InviteConfig{DefaultExpiresDays: 7},
	}
}
