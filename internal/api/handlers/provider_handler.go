package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/llm"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
)

// ProviderHandler 供应商 HTTP 处理器
type ProviderHandler struct {
	service *provider.Service
	router  *llm.Router
}

// NewProviderHandler 创建 ProviderHandler 实例
func NewProviderHandler(service *provider.Service, router *llm.Router) *ProviderHandler {
	return &ProviderHandler{service: service, router: router}
}

// CreateProvider 创建供应商
// @Summary 创建供应商
// @Tags providers
// @Accept json
// @Produce json
// @Param provider body provider.CreateProviderRequest true "供应商信息"
// @Success 201 {object} provider.ProviderResponse
// @Failure 400 {object} provider.ErrorResponse
// @Failure 409 {object} provider.ErrorResponse
// @Router /api/providers [post]
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req provider.CreateProviderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request parameters",
				Details: err.Error(),
			},
		})
		return
	}

	prov, err := h.service.CreateProvider(req)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNameExists) {
			c.JSON(http.StatusConflict, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NAME_CONFLICT",
					Message: "Provider name already exists",
				},
			})
			return
		}
		if errors.Is(err, provider.ErrInvalidInput) || errors.Is(err, provider.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "VALIDATION_ERROR",
					Message: err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to create provider",
			},
		})
		return
	}

	// 响应里不含明文凭证
	c.JSON(http.StatusCreated, provider.ToResponse(prov))
}

// GetProvider 获取单个供应商
// @Summary 获取单个供应商
// @Tags providers
// @Produce json
// @Param id path int true "供应商 ID"
// @Success 200 {object} provider.ProviderResponse
// @Failure 404 {object} provider.ErrorResponse
// @Router /api/providers/{id} [get]
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	prov, err := h.service.GetProvider(id)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Provider not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to get provider",
			},
		})
		return
	}

	c.JSON(http.StatusOK, provider.ToResponse(prov))
}

// ListProviders 获取供应商列表
// @Summary 获取供应商列表
// @Tags providers
// @Produce json
// @Success 200 {array} provider.ProviderResponse
// @Router /api/providers [get]
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	providers, err := h.service.ListProviders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to list providers",
			},
		})
		return
	}

	responses := make([]*provider.ProviderResponse, 0, len(providers))
	for _, p := range providers {
		responses = append(responses, provider.ToResponse(p))
	}

	c.JSON(http.StatusOK, responses)
}

// UpdateProvider 更新供应商
// @Summary 更新供应商
// @Tags providers
// @Accept json
// @Produce json
// @Param id path int true "供应商 ID"
// @Param provider body provider.UpdateProviderRequest true "更新字段"
// @Success 200 {object} provider.ProviderResponse
// @Failure 404 {object} provider.ErrorResponse
// @Router /api/providers/{id} [put]
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req provider.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request parameters",
				Details: err.Error(),
			},
		})
		return
	}

	prov, err := h.service.UpdateProvider(id, req)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrProviderNotFound):
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Provider not found",
				},
			})
		case errors.Is(err, provider.ErrProviderNameExists):
			c.JSON(http.StatusConflict, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NAME_CONFLICT",
					Message: "Provider name already exists",
				},
			})
		case errors.Is(err, provider.ErrInvalidInput), errors.Is(err, provider.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "VALIDATION_ERROR",
					Message: err.Error(),
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "INTERNAL_ERROR",
					Message: "Failed to update provider",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, provider.ToResponse(prov))
}

// DeleteProvider 删除供应商（级联删除旗下模型）
// @Summary 删除供应商
// @Tags providers
// @Param id path int true "供应商 ID"
// @Success 204
// @Failure 404 {object} provider.ErrorResponse
// @Router /api/providers/{id} [delete]
func (h *ProviderHandler) DeleteProvider(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProvider(id); err != nil {
		if errors.Is(err, provider.ErrProviderNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Provider not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to delete provider",
			},
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// testProviderRequest 连通性探测请求体
type testProviderRequest struct {
	ModelID string `json:"model_id" binding:"required"`
}

// TestProvider 连通性探测
// 无论探测成败都返回 200，结果在 body 里；只有供应商不
// 存在或参数非法才返回非 2xx
// @Summary 探测供应商连通性
// @Tags providers
// @Accept json
// @Produce json
// @Param id path int true "供应商 ID"
// @Param request body testProviderRequest true "线上模型标识"
// @Success 200 {object} llm.ConnectivityResult
// @Router /api/providers/{id}/test [post]
func (h *ProviderHandler) TestProvider(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req testProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "model_id is required",
			},
		})
		return
	}

	prov, err := h.service.GetProvider(id)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Provider not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to get provider",
			},
		})
		return
	}

	result := h.router.TestConnectivity(c.Request.Context(), prov, req.ModelID)
	c.JSON(http.StatusOK, result)
}

// ListOpenRouterModels OpenRouter 模型目录
// 目录拉取失败时回退到内置静态列表，端点永不失败
// @Summary 获取 OpenRouter 可用模型列表
// @Tags providers
// @Produce json
// @Success 200 {array} llm.OpenRouterModel
// @Router /api/openrouter/models [get]
func (h *ProviderHandler) ListOpenRouterModels(c *gin.Context) {
	c.JSON(http.StatusOK, llm.FetchOpenRouterModels(c.Request.Context()))
}

// parseID 解析路径里的数字 ID，失败时写入 400 响应
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INVALID_ID",
				Message: "Invalid ID",
			},
		})
		return 0, false
	}
	return uint(id), true
}
