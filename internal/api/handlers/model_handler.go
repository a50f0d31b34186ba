package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
)

// ModelHandler 模型 HTTP 处理器
type ModelHandler struct {
	service *provider.Service
}

// NewModelHandler 创建 ModelHandler 实例
func NewModelHandler(service *provider.Service) *ModelHandler {
	return &ModelHandler{service: service}
}

// CreateModel 创建模型
// @Summary 创建模型
// @Tags models
// @Accept json
// @Produce json
// @Param model body provider.CreateModelRequest true "模型信息"
// @Success 201 {object} models.Model
// @Failure 400 {object} provider.ErrorResponse
// @Router /api/models [post]
func (h *ModelHandler) CreateModel(c *gin.Context) {
	var req provider.CreateModelRequest
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

	model, err := h.service.CreateModel(req)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrProviderNotFound):
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Provider not found",
				},
			})
		case errors.Is(err, provider.ErrInvalidInput):
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
					Message: "Failed to create model",
				},
			})
		}
		return
	}

	c.JSON(http.StatusCreated, model)
}

// GetModel 获取单个模型
// @Summary 获取单个模型
// @Tags models
// @Produce json
// @Param id path int true "模型 ID"
// @Success 200 {object} models.Model
// @Failure 404 {object} provider.ErrorResponse
// @Router /api/models/{id} [get]
func (h *ModelHandler) GetModel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	model, err := h.service.GetModel(id)
	if err != nil {
		if errors.Is(err, provider.ErrModelNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Model not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to get model",
			},
		})
		return
	}

	c.JSON(http.StatusOK, model)
}

// ListModels 获取模型列表
// 可选 provider_id 查询参数按供应商过滤
// @Summary 获取模型列表
// @Tags models
// @Produce json
// @Param provider_id query int false "按供应商过滤"
// @Success 200 {array} models.Model
// @Router /api/models [get]
func (h *ModelHandler) ListModels(c *gin.Context) {
	var providerID uint
	if raw := c.Query("provider_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "INVALID_ID",
					Message: "Invalid provider_id",
				},
			})
			return
		}
		providerID = uint(parsed)
	}

	modelList, err := h.service.ListModels(providerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to list models",
			},
		})
		return
	}

	c.JSON(http.StatusOK, modelList)
}

// UpdateModel 更新模型
// @Summary 更新模型
// @Tags models
// @Accept json
// @Produce json
// @Param id path int true "模型 ID"
// @Param model body provider.UpdateModelRequest true "更新字段"
// @Success 200 {object} models.Model
// @Failure 404 {object} provider.ErrorResponse
// @Router /api/models/{id} [put]
func (h *ModelHandler) UpdateModel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req provider.UpdateModelRequest
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

	model, err := h.service.UpdateModel(id, req)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrModelNotFound):
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Model not found",
				},
			})
		case errors.Is(err, provider.ErrInvalidInput):
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
					Message: "Failed to update model",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, model)
}

// DeleteModel 删除模型
// @Summary 删除模型
// @Tags models
// @Param id path int true "模型 ID"
// @Success 204
// @Failure 404 {object} provider.ErrorResponse
// @Router /api/models/{id} [delete]
func (h *ModelHandler) DeleteModel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteModel(id); err != nil {
		if errors.Is(err, provider.ErrModelNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Model not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to delete model",
			},
		})
		return
	}

	c.Status(http.StatusNoContent)
}
