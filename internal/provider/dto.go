package provider

import "github.com/sheldon123z/ArxivLearner-sub001/internal/models"

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// CreateProviderRequest 创建供应商请求
type CreateProviderRequest struct {
	Name          string              `json:"name" binding:"required"`
	Type          models.ProviderType `json:"type" binding:"required"`
	BaseURL       string              `json:"base_url"`
	APIKey        string              `json:"api_key" binding:"required"`
	CustomHeaders map[string]string   `json:"custom_headers"`
	Enabled       *bool               `json:"enabled"`
	SortOrder     int                 `json:"sort_order"`
}

// UpdateProviderRequest 更新供应商请求（所有字段可选）
type UpdateProviderRequest struct {
	Name          *string              `json:"name"`
	Type          *models.ProviderType `json:"type"`
	BaseURL       *string              `json:"base_url"`
	APIKey        *string              `json:"api_key"`
	CustomHeaders *map[string]string   `json:"custom_headers"`
	Enabled       *bool                `json:"enabled"`
	SortOrder     *int                 `json:"sort_order"`
}

// ProviderResponse 供应商响应
// 明文 API Key 永远不出现在响应里，只暴露是否已配置
type ProviderResponse struct {
	ID            uint                `json:"id"`
	Name          string              `json:"name"`
	Type          models.ProviderType `json:"type"`
	BaseURL       string              `json:"base_url"`
	HasCredential bool                `json:"has_credential"`
	CustomHeaders string              `json:"custom_headers,omitempty"`
	Enabled       bool                `json:"enabled"`
	SortOrder     int                 `json:"sort_order"`
}

// ToResponse 转换为响应 DTO
func ToResponse(p *models.Provider) *ProviderResponse {
	return &ProviderResponse{
		ID:            p.ID,
		Name:          p.Name,
		Type:          p.Type,
		BaseURL:       p.BaseURL,
		HasCredential: p.CredentialRef != "",
		CustomHeaders: p.CustomHeaders,
		Enabled:       p.Enabled,
		SortOrder:     p.SortOrder,
	}
}

// CreateModelRequest 创建模型请求
type CreateModelRequest struct {
	ProviderID      uint                `json:"provider_id" binding:"required"`
	ModelID         string              `json:"model_id" binding:"required"`
	DisplayName     string              `json:"display_name"`
	ContextWindow   int                 `json:"context_window"`
	MaxOutputTokens *int                `json:"max_output_tokens"`
	Capabilities    models.Capabilities `json:"capabilities"`
	InputPrice      *float64            `json:"input_price"`
	OutputPrice     *float64            `json:"output_price"`
	IsDefault       bool                `json:"is_default"`
	Enabled         *bool               `json:"enabled"`
}

// UpdateModelRequest 更新模型请求
type UpdateModelRequest struct {
	ModelID         *string              `json:"model_id"`
	DisplayName     *string              `json:"display_name"`
	ContextWindow   *int                 `json:"context_window"`
	MaxOutputTokens *int                 `json:"max_output_tokens"`
	Capabilities    *models.Capabilities `json:"capabilities"`
	InputPrice      *float64             `json:"input_price"`
	OutputPrice     *float64             `json:"output_price"`
	IsDefault       *bool                `json:"is_default"`
	Enabled         *bool                `json:"enabled"`
}
