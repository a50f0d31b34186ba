package models

import (
	"time"

	"gorm.io/gorm"
)

// Capabilities 模型能力描述
// 驱动上层功能开关，也决定哪种上下文策略可用
// （例如 pdf_input 允许直接注入文件）
type Capabilities struct {
	TextInput       bool `gorm:"not null;default:true" json:"text_input"`
	TextOutput      bool `gorm:"not null;default:true" json:"text_output"`
	ImageInput      bool `gorm:"not null;default:false" json:"image_input"`
	ImageOutput     bool `gorm:"not null;default:false" json:"image_output"`
	PDFInput        bool `gorm:"not null;default:false" json:"pdf_input"`
	FunctionCalling bool `gorm:"not null;default:false" json:"function_calling"`
	Streaming       bool `gorm:"not null;default:true" json:"streaming"`
	JSONMode        bool `gorm:"not null;default:false" json:"json_mode"`
	Reasoning       bool `gorm:"not null;default:false" json:"reasoning"`
}

// Model 模型记录
// model_id 是请求时使用的线上标识，只有与所属供应商的
// base_url + 凭证组合时才有意义
type Model struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ProviderID      uint           `gorm:"not null;index" json:"provider_id"`
	Provider        *Provider      `gorm:"constraint:OnDelete:CASCADE" json:"provider,omitempty"`
	ModelID         string         `gorm:"type:varchar(100);not null" json:"model_id"`
	DisplayName     string         `gorm:"type:varchar(200);not null;default:''" json:"display_name"`
	ContextWindow   int            `gorm:"not null;default:128000" json:"context_window"` // 近似值，按字符计
	MaxOutputTokens *int           `json:"max_output_tokens,omitempty"`
	Capabilities    Capabilities   `gorm:"embedded;embeddedPrefix:cap_" json:"capabilities"`
	InputPrice      *float64       `json:"input_price,omitempty"`  // 每百万 token 价格
	OutputPrice     *float64       `json:"output_price,omitempty"` // 每百万 token 价格
	IsDefault       bool           `gorm:"not null;default:false" json:"is_default"`
	Enabled         bool           `gorm:"not null;default:true" json:"enabled"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Model) TableName() string {
	return "models"
}
