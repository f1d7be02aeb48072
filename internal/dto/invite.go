package dto

// ── 邀请模块 DTO ──

// CreateInviteRequest 签发邀请令牌请求
// MaxUses 为 nil 表示不限次数；ExpiresInDays 为 nil 取默认值，0 表示永不过期
type CreateInviteRequest struct {
	MaxUses       *int `json:"max_uses"        binding:"omitempty,min=1"`
	ExpiresInDays *int `json:"expires_in_days" binding:"omitempty,min=0,max=365"`
}
