package models

import "time"

// ChatRecord 会话消息持久化记录
// 用户消息必须在发起 LLM 请求之前落库，保证请求中途
// 崩溃时提问不丢失（答案可以丢）
type ChatRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);not null;index" json:"conversation_id"`
	PaperID        uint      `gorm:"not null;index" json:"paper_id"`
	Role           string    `gorm:"type:varchar(20);not null" json:"role"` // system/user/assistant
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 指定表名
func (ChatRecord) TableName() string {
	return "chat_records"
}
