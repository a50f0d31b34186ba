package models

import (
	"time"

	"gorm.io/gorm"
)

// ProviderType 供应商协议类型
// 决定 Router 选择哪个 Adapter 家族
type ProviderType string

const (
	ProviderOpenAI       ProviderType = "openai"
	ProviderAnthropic    ProviderType = "anthropic"
	ProviderGoogle       ProviderType = "google"
	ProviderDeepSeek     ProviderType = "deepseek"
	ProviderOpenRouter   ProviderType = "openrouter"
	ProviderCustomOpenAI ProviderType = "custom_openai"
	ProviderZhipu        ProviderType = "zhipu"
	ProviderDashScope    ProviderType = "dashscope"
	ProviderMiniMax      ProviderType = "minimax"
)

// IsOpenAICompatible 判断该类型是否走 OpenAI 兼容协议
// 除 Anthropic / Google 之外的类型共用 /chat/completions 协议
func (t ProviderType) IsOpenAICompatible() bool {
	switch t {
	case ProviderAnthropic, ProviderGoogle:
		return false
	default:
		return true
	}
}

// Provider 供应商模型
// 存储 AI 服务供应商的接入配置。API Key 不落在本表，
// 仅保存 credential_ref，密文由 credentials 表持有
type Provider struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(100);not null" json:"name"`
	Type          ProviderType   `gorm:"type:varchar(30);not null;default:'openai'" json:"type"`
	BaseURL       string         `gorm:"type:varchar(255);not null" json:"base_url"`
	CredentialRef string         `gorm:"type:varchar(100);not null;default:''" json:"credential_ref"`
	CustomHeaders string         `gorm:"type:text" json:"custom_headers"` // JSON 序列化的 map[string]string
	Enabled       bool           `gorm:"not null" json:"enabled"`
	SortOrder     int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"` // 软删除支持
}

// TableName 指定表名
func (Provider) TableName() string {
	return "providers"
}
