//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/klakung122/bucketlist-Public/internal/model"
	"github.com/klakung122/bucketlist-Public/internal/repository"
	"github.com/klakung122/bucketlist-Public/pkg/token"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres password=postgres dbname=bucketlist_test sslmode=disable TimeZone=Asia/Bangkok"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.User{},
		&model.Topic{},
		&model.TopicMember{},
		&model.InviteToken{},
		&model.List{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupTopic 创建属主与主题并返回清理函数
func setupTopic(t *testing.T) (owner *model.User, topic *model.Topic, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	nano := time.Now().UnixNano()

	owner = &model.User{
		Username:     fmt.Sprintf("owner%d", nano),
		Email:        fmt.Sprintf("owner%d@example.com", nano),
		PasswordHash: "$2a$10$placeholder",
	}
	if err := testDB.WithContext(ctx).Create(owner).Error; err != nil {
		t.Fatalf("创建属主失败: %v", err)
	}

	topic = &model.Topic{
		Slug:    fmt.Sprintf("it-%d", nano),
		Title:   "集成测试主题",
		OwnerID: owner.UserID,
	}
	if err := testDB.WithContext(ctx).Create(topic).Error; err != nil {
		t.Fatalf("创建主题失败: %v", err)
	}

	cleanup = func() {
		testDB.Where("topic_id = ?", topic.TopicID).Delete(&model.InviteToken{})
		testDB.Where("topic_id = ?", topic.TopicID).Delete(&model.TopicMember{})
		testDB.Delete(topic)
		testDB.Delete(owner)
	}
	return owner, topic, cleanup
}

func createUser(t *testing.T, tag string) *model.User {
	t.Helper()
	nano := time.Now().UnixNano()
	u := &model.User{
		Username:     fmt.Sprintf("%s%d", tag, nano),
		Email:        fmt.Sprintf("%s%d@example.com", tag, nano),
		PasswordHash: "$2a$10$placeholder",
	}
	if err := testDB.Create(u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return u
}

// ═══════════════════════════════════════════════════════════
// 兑换竞态
// ═══════════════════════════════════════════════════════════

// 两个用户并发兑换 max_uses=1 的令牌：
// FOR UPDATE 行级锁保证恰好一人成功加入，令牌随之删除
func TestInviteRedemption_ConcurrentQuotaRace(t *testing.T) {
	_, topic, cleanup := setupTopic(t)
	defer cleanup()
	ctx := context.Background()

	secret, err := token.NewSecret()
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}
	maxUses := 1
	tok := &model.InviteToken{
		TopicID:   topic.TopicID,
		TokenHash: token.Hash(secret),
		MaxUses:   &maxUses,
		CreatedBy: topic.OwnerID,
	}
	if err := testDB.Create(tok).Error; err != nil {
		t.Fatalf("创建令牌失败: %v", err)
	}

	userA := createUser(t, "racer-a")
	userB := createUser(t, "racer-b")
	defer testDB.Delete(userA)
	defer testDB.Delete(userB)

	repo := repository.NewRepository(testDB)

	// redeem 复刻兑换事务的核心路径：锁定 → 检查 → 幂等加入 → 消耗
	redeem := func(userID string) (joined bool, err error) {
		err = repo.WithTx(ctx, func(tx *repository.Repository) error {
			locked, err := tx.InviteToken.GetByHashForUpdate(ctx, tok.TokenHash)
			if err != nil {
				return err
			}
			if locked.Exhausted() {
				return errors.New("quota exceeded")
			}
			joined, err = tx.TopicMember.Add(ctx, locked.TopicID, userID)
			if err != nil {
				return err
			}
			if !joined {
				return nil
			}
			if locked.MaxUses != nil && locked.UsedCount+1 >= *locked.MaxUses {
				return tx.InviteToken.Delete(ctx, locked.InviteTokenID)
			}
			return tx.InviteToken.IncrementUsage(ctx, locked.InviteTokenID)
		})
		return joined, err
	}

	type result struct {
		joined bool
		err    error
	}
	results := make([]result, 2)
	var wg sync.WaitGroup
	for i, u := range []*model.User{userA, userB} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			joined, err := redeem(userID)
			results[i] = result{joined: joined, err: err}
		}(i, u.UserID)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.err == nil && r.joined {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("并发兑换成功数 = %d, 期望恰好 1（结果: %+v）", succeeded, results)
	}

	// 配额耗尽后令牌行必须已删除
	var count int64
	testDB.Model(&model.InviteToken{}).Where("invite_token_id = ?", tok.InviteTokenID).Count(&count)
	if count != 0 {
		t.Errorf("令牌行仍存在，期望已随配额耗尽删除")
	}

	// 恰好一名新成员入表
	var members int64
	testDB.Model(&model.TopicMember{}).Where("topic_id = ?", topic.TopicID).Count(&members)
	if members != 1 {
		t.Errorf("成员数 = %d, 期望 1", members)
	}
}

// 幂等加入：同一用户重复 Add 只影响一行
func TestTopicMemberAdd_Idempotent(t *testing.T) {
	_, topic, cleanup := setupTopic(t)
	defer cleanup()
	ctx := context.Background()

	user := createUser(t, "member")
	defer testDB.Delete(user)

	repo := repository.NewRepository(testDB)

	first, err := repo.TopicMember.Add(ctx, topic.TopicID, user.UserID)
	if err != nil {
		t.Fatalf("首次加入失败: %v", err)
	}
	if !first {
		t.Error("首次加入 insertedNow 应为 true")
	}

	second, err := repo.TopicMember.Add(ctx, topic.TopicID, user.UserID)
	if err != nil {
		t.Fatalf("重复加入不应报错: %v", err)
	}
	if second {
		t.Error("重复加入 insertedNow 应为 false")
	}
}

// 唯一约束翻译：同主题同标题的清单返回 gorm.ErrDuplicatedKey
func TestListCreate_DuplicateTitleTranslated(t *testing.T) {
	owner, topic, cleanup := setupTopic(t)
	defer cleanup()
	ctx := context.Background()

	repo := repository.NewRepository(testDB)
	defer testDB.Where("topic_id = ?", topic.TopicID).Delete(&model.List{})

	l1 := &model.List{TopicID: topic.TopicID, Title: "跳伞", Status: model.ListStatusActive, CreatedBy: owner.UserID}
	if err := repo.List.Create(ctx, l1); err != nil {
		t.Fatalf("首次创建失败: %v", err)
	}

	l2 := &model.List{TopicID: topic.TopicID, Title: "跳伞", Status: model.ListStatusActive, CreatedBy: owner.UserID}
	if err := repo.List.Create(ctx, l2); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("err = %v, 期望 gorm.ErrDuplicatedKey", err)
	}
}
