package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/klakung122/bucketlist-Public/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoLists      = errors.New("该主题下暂无清单")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 将主题下的清单导出为 Excel (.xlsx)，供线下分享与存档
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTopicLists 导出主题清单为 Excel（需要成员身份）
	ExportTopicLists(ctx context.Context, slug, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	access AccessService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, access AccessService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, access: access, logger: logger}
}

func (s *exportService) ExportTopicLists(ctx context.Context, slug, userID string) (*bytes.Buffer, string, error) {
	access, err := s.access.Authorize(ctx, slug, userID)
	if err != nil {
		return nil, "", err
	}
	if !access.IsMember {
		return nil, "", ErrForbidden
	}

	lists, err := s.repo.List.ListByTopic(ctx, access.Topic.TopicID)
	if err != nil {
		s.logger.Error("查询清单失败", zap.String("topic_id", access.Topic.TopicID), zap.Error(err))
		return nil, "", err
	}
	if len(lists) == 0 {
		return nil, "", ErrExportNoLists
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Lists"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"标题", "状态", "描述", "创建时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			s.logger.Error("写入表头失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	for row, l := range lists {
		values := []interface{}{
			l.Title,
			l.Status,
			l.Description,
			l.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				s.logger.Error("写入单元格失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		}
	}

	// 标题列放宽
	_ = f.SetColWidth(sheet, "A", "A", 36)
	_ = f.SetColWidth(sheet, "C", "C", 48)
	_ = f.SetColWidth(sheet, "D", "D", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("序列化 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s-lists.xlsx", access.Topic.Slug)
	return buf, filename, nil
}
