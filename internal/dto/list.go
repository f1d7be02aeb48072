package dto

// ── 清单模块 DTO ──

// CreateListRequest 创建清单请求
type CreateListRequest struct {
	Title       string `json:"title"       binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateListStatusRequest 更新清单状态请求
type UpdateListStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active archived"`
}
