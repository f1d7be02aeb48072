package dto

// ── 主题模块 DTO ──

// CreateTopicRequest 创建主题请求
type CreateTopicRequest struct {
	Title       string `json:"title"       binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateTopicRequest 更新主题标题请求（仅属主）
type UpdateTopicRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}
