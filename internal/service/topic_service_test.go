package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/klakung122/bucketlist-Public/internal/dto"
	"github.com/klakung122/bucketlist-Public/internal/model"
)

func newTopicFixture(t *testing.T) (TopicService, *testRepos, *captureNotifier) {
	t.Helper()
	repo, mocks := newTestRepository()
	access := NewAccessService(repo, zap.NewNop())
	notifier := &captureNotifier{}
	return NewTopicService(repo, access, notifier, zap.NewNop()), mocks, notifier
}

func seedTopic(t *testing.T, mocks *testRepos, slug, ownerID string) *model.Topic {
	t.Helper()
	topic := &model.Topic{Slug: slug, Title: "人生清单", OwnerID: ownerID}
	if err := mocks.topics.Create(context.Background(), topic); err != nil {
		t.Fatalf("种子主题失败: %v", err)
	}
	if _, err := mocks.members.Add(context.Background(), topic.TopicID, ownerID); err != nil {
		t.Fatalf("种子属主成员失败: %v", err)
	}
	return topic
}

func TestTopicService_Create(t *testing.T) {
	svc, mocks, _ := newTopicFixture(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, &dto.CreateTopicRequest{Title: "去冰岛看极光", Description: "攒钱！"}, "owner-1", "Alice_W")
	if err != nil {
		t.Fatalf("创建主题失败: %v", err)
	}

	if resp.Title != "去冰岛看极光" {
		t.Errorf("title = %s", resp.Title)
	}
	if resp.OwnerID != "owner-1" {
		t.Errorf("owner_id = %s", resp.OwnerID)
	}

	// slug 形如 <乱序用户名前缀>-<8位随机后缀>
	parts := strings.Split(resp.Slug, "-")
	if len(parts) < 2 {
		t.Fatalf("slug = %s, 期望包含 - 分隔的前缀与后缀", resp.Slug)
	}
	if suffix := parts[len(parts)-1]; len(suffix) != 8 {
		t.Errorf("slug 后缀长度 = %d, 期望 8", len(suffix))
	}
	if len(resp.Slug) > 64 {
		t.Errorf("slug 长度 = %d, 超过 64", len(resp.Slug))
	}

	// 属主同事务内写入成员表
	joined, _ := mocks.members.Exists(ctx, resp.ID, "owner-1")
	if !joined {
		t.Error("创建主题后属主应立即成为成员")
	}
}

func TestTopicService_GetBySlug(t *testing.T) {
	svc, mocks, _ := newTopicFixture(t)
	ctx := context.Background()
	topic := seedTopic(t, mocks, "alice-abc12345", "owner-1")
	mocks.members.Add(ctx, topic.TopicID, "member-1")

	for _, userID := range []string{"owner-1", "member-1"} {
		resp, err := svc.GetBySlug(ctx, topic.Slug, userID)
		if err != nil {
			t.Fatalf("成员 %s 查看主题失败: %v", userID, err)
		}
		if resp.Slug != topic.Slug {
			t.Errorf("slug = %s", resp.Slug)
		}
	}

	if _, err := svc.GetBySlug(ctx, topic.Slug, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, 期望 ErrForbidden", err)
	}
	if _, err := svc.GetBySlug(ctx, "no-such-slug", "owner-1"); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("err = %v, 期望 ErrTopicNotFound", err)
	}
}

func TestTopicService_UpdateTitle_OwnerOnly(t *testing.T) {
	svc, mocks, _ := newTopicFixture(t)
	ctx := context.Background()
	topic := seedTopic(t, mocks, "alice-abc12345", "owner-1")
	mocks.members.Add(ctx, topic.TopicID, "member-1")

	if err := svc.UpdateTitle(ctx, topic.Slug, &dto.UpdateTopicRequest{Title: "新标题"}, "member-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, 期望 ErrForbidden", err)
	}

	if err := svc.UpdateTitle(ctx, topic.Slug, &dto.UpdateTopicRequest{Title: "新标题"}, "owner-1"); err != nil {
		t.Fatalf("属主更新标题失败: %v", err)
	}
	got, _ := mocks.topics.GetByID(ctx, topic.TopicID)
	if got.Title != "新标题" {
		t.Errorf("title = %s, 期望 新标题", got.Title)
	}
}

func TestTopicService_Delete_OwnerOnly(t *testing.T) {
	svc, mocks, _ := newTopicFixture(t)
	ctx := context.Background()
	topic := seedTopic(t, mocks, "alice-abc12345", "owner-1")
	mocks.members.Add(ctx, topic.TopicID, "member-1")

	if err := svc.Delete(ctx, topic.Slug, "member-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, 期望 ErrForbidden", err)
	}

	if err := svc.Delete(ctx, topic.Slug, "owner-1"); err != nil {
		t.Fatalf("属主删除主题失败: %v", err)
	}
	if _, err := mocks.topics.GetByID(ctx, topic.TopicID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("删除后查询应返回未找到, 实际 err = %v", err)
	}
}

func TestTopicService_ListMine(t *testing.T) {
	svc, mocks, _ := newTopicFixture(t)
	ctx := context.Background()

	owned := seedTopic(t, mocks, "mine-abc12345", "user-1")
	joined := seedTopic(t, mocks, "other-abc12345", "user-2")
	mocks.members.Add(ctx, joined.TopicID, "user-1")
	seedTopic(t, mocks, "unrelated-abc1", "user-3")

	result, err := svc.ListMine(ctx, "user-1")
	if err != nil {
		t.Fatalf("列出主题失败: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("主题数 = %d, 期望 2（自有 + 加入）", len(result))
	}

	ownedOnly, err := svc.ListOwned(ctx, "user-1")
	if err != nil {
		t.Fatalf("列出自有主题失败: %v", err)
	}
	if len(ownedOnly) != 1 || ownedOnly[0].ID != owned.TopicID {
		t.Errorf("自有主题 = %+v, 期望仅 %s", ownedOnly, owned.TopicID)
	}
}

func TestTopicService_ListMembers(t *testing.T) {
	svc, mocks, _ := newTopicFixture(t)
	ctx := context.Background()
	topic := seedTopic(t, mocks, "alice-abc12345", "owner-1")
	mocks.members.Add(ctx, topic.TopicID, "member-1")

	members, err := svc.ListMembers(ctx, topic.Slug, "member-1")
	if err != nil {
		t.Fatalf("列出成员失败: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("成员数 = %d, 期望 2", len(members))
	}

	if _, err := svc.ListMembers(ctx, topic.Slug, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, 期望 ErrForbidden", err)
	}
}

func TestTopicService_Leave(t *testing.T) {
	svc, mocks, notifier := newTopicFixture(t)
	ctx := context.Background()
	topic := seedTopic(t, mocks, "alice-abc12345", "owner-1")
	mocks.members.Add(ctx, topic.TopicID, "member-1")

	// 属主不能退出自己的主题
	if err := svc.Leave(ctx, topic.Slug, "owner-1"); !errors.Is(err, ErrOwnerCannotLeave) {
		t.Errorf("err = %v, 期望 ErrOwnerCannotLeave", err)
	}

	// 非成员无权退出
	if err := svc.Leave(ctx, topic.Slug, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, 期望 ErrForbidden", err)
	}

	// 普通成员退出成功，成员记录删除，主题频道收到通知
	if err := svc.Leave(ctx, topic.Slug, "member-1"); err != nil {
		t.Fatalf("退出主题失败: %v", err)
	}
	exists, _ := mocks.members.Exists(ctx, topic.TopicID, "member-1")
	if exists {
		t.Error("退出后成员记录仍存在")
	}

	events := notifier.byEvent("members:removed")
	if len(events) != 1 {
		t.Fatalf("members:removed 事件数 = %d, 期望 1", len(events))
	}
	if events[0].Target != "topic:"+topic.Slug {
		t.Errorf("事件目标 = %s, 期望 topic:%s", events[0].Target, topic.Slug)
	}
}
