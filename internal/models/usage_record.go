package models

import "time"

// UsageRecord 用量记录（只追加，创建后不再修改）
// 模型名与供应商名做了反范式化冗余，供应商或模型被删除后
// 历史记录依然可读
type UsageRecord struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"` // UUID
	ModelID      uint      `gorm:"not null;index" json:"model_id"`
	ModelName    string    `gorm:"type:varchar(200);not null" json:"model_name"`
	ProviderName string    `gorm:"type:varchar(100);not null" json:"provider_name"`
	Date         time.Time `gorm:"not null;index" json:"date"`
	InputTokens  int       `gorm:"not null" json:"input_tokens"`
	OutputTokens int       `gorm:"not null" json:"output_tokens"`
	Cost         float64   `gorm:"not null" json:"cost"` // 估算费用（美元）
	RequestType  string    `gorm:"type:varchar(30);not null" json:"request_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (UsageRecord) TableName() string {
	return "usage_records"
}
