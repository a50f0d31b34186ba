package models

import "time"

// Credential 凭证记录
// ciphertext 为 AES-256-GCM 加密后的 Base64 密文，
// 明文 API Key 永远不落库、不出现在日志中
type Credential struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Ref        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"ref"`
	Ciphertext string    `gorm:"type:text;not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Credential) TableName() string {
	return "credentials"
}
