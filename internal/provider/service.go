package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/secret"
)

var (
	// ErrInvalidInput 无效输入
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidURL 无效 URL
	ErrInvalidURL = errors.New("invalid URL")
)

// Service 供应商业务逻辑层
// API Key 经由 secret.Store 落库，本层只持有 credential_ref
type Service struct {
	repo    *Repository
	secrets secret.Store
}

// NewService 创建 Service 实例
func NewService(repo *Repository, secrets secret.Store) *Service {
	return &Service{repo: repo, secrets: secrets}
}

// CreateProvider 创建供应商
func (s *Service) CreateProvider(req CreateProviderRequest) (*models.Provider, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.CheckNameExists(req.Name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrProviderNameExists
	}

	headers, err := encodeHeaders(req.CustomHeaders)
	if err != nil {
		return nil, fmt.Errorf("%w: custom_headers", ErrInvalidInput)
	}

	// 凭证引用用随机 UUID，避免从引用反推供应商
	credentialRef := "cred-" + uuid.NewString()
	if err := s.secrets.Save(credentialRef, req.APIKey); err != nil {
		return nil, fmt.Errorf("保存凭证失败: %w", err)
	}

	provider := &models.Provider{
		Name:          req.Name,
		Type:          req.Type,
		BaseURL:       req.BaseURL,
		CredentialRef: credentialRef,
		CustomHeaders: headers,
		SortOrder:     req.SortOrder,
		Enabled:       true,
	}
	if req.Enabled != nil {
		provider.Enabled = *req.Enabled
	}

	if err := s.repo.Create(provider); err != nil {
		return nil, err
	}

	return provider, nil
}

// GetProvider 获取单个供应商
func (s *Service) GetProvider(id uint) (*models.Provider, error) {
	return s.repo.FindByID(id)
}

// ListProviders 获取供应商列表
func (s *Service) ListProviders() ([]*models.Provider, error) {
	return s.repo.FindAll()
}

// UpdateProvider 更新供应商
func (s *Service) UpdateProvider(id uint, req UpdateProviderRequest) (*models.Provider, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, err
	}

	provider, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != provider.Name {
		exists, err := s.repo.CheckNameExists(*req.Name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrProviderNameExists
		}
		provider.Name = *req.Name
	}

	if req.Type != nil {
		provider.Type = *req.Type
	}
	if req.BaseURL != nil {
		provider.BaseURL = *req.BaseURL
	}
	if req.CustomHeaders != nil {
		headers, err := encodeHeaders(*req.CustomHeaders)
		if err != nil {
			return nil, fmt.Errorf("%w: custom_headers", ErrInvalidInput)
		}
		provider.CustomHeaders = headers
	}
	if req.Enabled != nil {
		provider.Enabled = *req.Enabled
	}
	if req.SortOrder != nil {
		provider.SortOrder = *req.SortOrder
	}

	// 更新 API Key 时覆盖写入凭证存储，引用保持不变
	if req.APIKey != nil {
		if provider.CredentialRef == "" {
			provider.CredentialRef = "cred-" + uuid.NewString()
		}
		if err := s.secrets.Save(provider.CredentialRef, *req.APIKey); err != nil {
			return nil, fmt.Errorf("保存凭证失败: %w", err)
		}
	}

	if err := s.repo.Update(provider); err != nil {
		return nil, err
	}

	return provider, nil
}

// DeleteProvider 删除供应商
// 级联删除其下模型，并清除凭证
func (s *Service) DeleteProvider(id uint) error {
	provider, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if provider.CredentialRef != "" {
		if err := s.secrets.Delete(provider.CredentialRef); err != nil {
			// 凭证清理失败不回滚供应商删除，只记录
			return nil
		}
	}
	return nil
}

// ==================== 模型 ====================

// CreateModel 为供应商创建模型
func (s *Service) CreateModel(req CreateModelRequest) (*models.Model, error) {
	if strings.TrimSpace(req.ModelID) == "" {
		return nil, fmt.Errorf("%w: model_id is required", ErrInvalidInput)
	}

	// 供应商必须存在
	if _, err := s.repo.FindByID(req.ProviderID); err != nil {
		return nil, err
	}

	model := &models.Model{
		ProviderID:      req.ProviderID,
		ModelID:         req.ModelID,
		DisplayName:     req.DisplayName,
		ContextWindow:   req.ContextWindow,
		MaxOutputTokens: req.MaxOutputTokens,
		Capabilities:    req.Capabilities,
		InputPrice:      req.InputPrice,
		OutputPrice:     req.OutputPrice,
		IsDefault:       req.IsDefault,
		Enabled:         true,
	}
	if req.Enabled != nil {
		model.Enabled = *req.Enabled
	}
	if model.DisplayName == "" {
		model.DisplayName = req.ModelID
	}
	if model.ContextWindow <= 0 {
		model.ContextWindow = 128000
	}

	if err := s.repo.CreateModel(model); err != nil {
		return nil, err
	}

	if model.IsDefault {
		if err := s.repo.ClearDefaultExcept(model.ID); err != nil {
			return nil, err
		}
	}

	return model, nil
}

// GetModel 获取单个模型
func (s *Service) GetModel(id uint) (*models.Model, error) {
	return s.repo.FindModelByID(id)
}

// ListModels 获取模型列表，providerID 为 0 时返回全部
func (s *Service) ListModels(providerID uint) ([]*models.Model, error) {
	if providerID == 0 {
		return s.repo.FindAllModels()
	}
	return s.repo.FindModelsByProvider(providerID)
}

// UpdateModel 更新模型
func (s *Service) UpdateModel(id uint, req UpdateModelRequest) (*models.Model, error) {
	model, err := s.repo.FindModelByID(id)
	if err != nil {
		return nil, err
	}

	if req.ModelID != nil {
		if strings.TrimSpace(*req.ModelID) == "" {
			return nil, fmt.Errorf("%w: model_id cannot be empty", ErrInvalidInput)
		}
		model.ModelID = *req.ModelID
	}
	if req.DisplayName != nil {
		model.DisplayName = *req.DisplayName
	}
	if req.ContextWindow != nil {
		model.ContextWindow = *req.ContextWindow
	}
	if req.MaxOutputTokens != nil {
		model.MaxOutputTokens = req.MaxOutputTokens
	}
	if req.Capabilities != nil {
		model.Capabilities = *req.Capabilities
	}
	if req.InputPrice != nil {
		model.InputPrice = req.InputPrice
	}
	if req.OutputPrice != nil {
		model.OutputPrice = req.OutputPrice
	}
	if req.IsDefault != nil {
		model.IsDefault = *req.IsDefault
	}
	if req.Enabled != nil {
		model.Enabled = *req.Enabled
	}

	if err := s.repo.UpdateModel(model); err != nil {
		return nil, err
	}

	if model.IsDefault {
		if err := s.repo.ClearDefaultExcept(model.ID); err != nil {
			return nil, err
		}
	}

	return model, nil
}

// DeleteModel 删除模型
func (s *Service) DeleteModel(id uint) error {
	return s.repo.DeleteModel(id)
}

// ==================== 校验 ====================

// validateCreateRequest 验证创建请求
func (s *Service) validateCreateRequest(req CreateProviderRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.APIKey) == "" {
		return fmt.Errorf("%w: api_key is required", ErrInvalidInput)
	}

	// BaseURL 可为空（使用供应商类型的默认地址）
	if req.BaseURL != "" {
		if err := validateURL(req.BaseURL); err != nil {
			return err
		}
	}

	return nil
}

// validateUpdateRequest 验证更新请求
func (s *Service) validateUpdateRequest(req UpdateProviderRequest) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}

	if req.BaseURL != nil && *req.BaseURL != "" {
		if err := validateURL(*req.BaseURL); err != nil {
			return err
		}
	}

	if req.APIKey != nil && strings.TrimSpace(*req.APIKey) == "" {
		return fmt.Errorf("%w: api_key cannot be empty", ErrInvalidInput)
	}

	return nil
}

// validateURL 验证 URL 格式
func validateURL(urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%w: URL must be http or https", ErrInvalidURL)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%w: URL must have a host", ErrInvalidURL)
	}

	return nil
}

// encodeHeaders 自定义请求头序列化为 JSON 字符串
func encodeHeaders(headers map[string]string) (string, error) {
	if len(headers) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(headers)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
