package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/klakung122/bucketlist-Public/internal/model"
)

func newExportFixture(t *testing.T) (ExportService, *testRepos, *model.Topic) {
	t.Helper()
	repo, mocks := newTestRepository()
	access := NewAccessService(repo, zap.NewNop())
	svc := NewExportService(repo, access, zap.NewNop())
	topic := seedTopic(t, mocks, "alice-abc12345", "owner-1")
	return svc, mocks, topic
}

func TestExportService_ExportTopicLists(t *testing.T) {
	svc, mocks, topic := newExportFixture(t)
	ctx := context.Background()

	mocks.lists.Create(ctx, &model.List{
		TopicID: topic.TopicID, Title: "跳伞", Status: model.ListStatusActive, CreatedBy: "owner-1",
	})
	mocks.lists.Create(ctx, &model.List{
		TopicID: topic.TopicID, Title: "学潜水", Status: model.ListStatusArchived, CreatedBy: "owner-1",
	})

	buf, filename, err := svc.ExportTopicLists(ctx, topic.Slug, "owner-1")
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if filename != topic.Slug+"-lists.xlsx" {
		t.Errorf("filename = %s", filename)
	}

	// 产物应为可解析的 xlsx，且数据行数与清单数一致
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("解析导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Lists")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 { // 表头 + 2 条数据
		t.Errorf("行数 = %d, 期望 3", len(rows))
	}
	if rows[0][0] != "标题" {
		t.Errorf("表头 = %v", rows[0])
	}
}

func TestExportService_ExportTopicLists_Errors(t *testing.T) {
	svc, _, topic := newExportFixture(t)
	ctx := context.Background()

	if _, _, err := svc.ExportTopicLists(ctx, topic.Slug, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, 期望 ErrForbidden", err)
	}
	if _, _, err := svc.ExportTopicLists(ctx, topic.Slug, "owner-1"); !errors.Is(err, ErrExportNoLists) {
		t.Errorf("err = %v, 期望 ErrExportNoLists", err)
	}
	if _, _, err := svc.ExportTopicLists(ctx, "no-such-slug", "owner-1"); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("err = %v, 期望 ErrTopicNotFound", err)
	}
}
