package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/prompt"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
)

// TemplateHandler 提示词模板 HTTP 处理器
type TemplateHandler struct {
	repo *prompt.Repository
}

// NewTemplateHandler 创建 TemplateHandler 实例
func NewTemplateHandler(repo *prompt.Repository) *TemplateHandler {
	return &TemplateHandler{repo: repo}
}

// createTemplateRequest 创建模板请求
type createTemplateRequest struct {
	Name               string              `json:"name" binding:"required"`
	Scene              models.Scene        `json:"scene" binding:"required"`
	SystemPrompt       string              `json:"system_prompt"`
	UserPromptTemplate string              `json:"user_prompt_template"`
	ResponseLanguage   string              `json:"response_language"`
	OutputFormat       models.OutputFormat `json:"output_format"`
	Temperature        *float64            `json:"temperature"`
	MaxTokens          int                 `json:"max_tokens"`
	BoundModelID       *uint               `json:"bound_model_id"`
	SortOrder          int                 `json:"sort_order"`
}

// updateTemplateRequest 更新模板请求（所有字段可选）
type updateTemplateRequest struct {
	Name               *string              `json:"name"`
	SystemPrompt       *string              `json:"system_prompt"`
	UserPromptTemplate *string              `json:"user_prompt_template"`
	ResponseLanguage   *string              `json:"response_language"`
	OutputFormat       *models.OutputFormat `json:"output_format"`
	Temperature        *float64             `json:"temperature"`
	MaxTokens          *int                 `json:"max_tokens"`
	BoundModelID       *uint                `json:"bound_model_id"`
	ClearBoundModel    bool                 `json:"clear_bound_model"`
	SortOrder          *int                 `json:"sort_order"`
}

// CreateTemplate 创建模板
// @Summary 创建提示词模板
// @Tags templates
// @Accept json
// @Produce json
// @Success 201 {object} models.PromptTemplate
// @Router /api/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req createTemplateRequest
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

	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "temperature must be in [0, 2]",
			},
		})
		return
	}

	tpl := &models.PromptTemplate{
		Name:               req.Name,
		Scene:              req.Scene,
		SystemPrompt:       req.SystemPrompt,
		UserPromptTemplate: req.UserPromptTemplate,
		ResponseLanguage:   req.ResponseLanguage,
		OutputFormat:       req.OutputFormat,
		Temperature:        0.7,
		MaxTokens:          req.MaxTokens,
		BoundModelID:       req.BoundModelID,
		SortOrder:          req.SortOrder,
	}
	if req.Temperature != nil {
		tpl.Temperature = *req.Temperature
	}
	if tpl.ResponseLanguage == "" {
		tpl.ResponseLanguage = "中文"
	}
	if tpl.OutputFormat == "" {
		tpl.OutputFormat = models.OutputMarkdown
	}
	if tpl.MaxTokens <= 0 {
		tpl.MaxTokens = 4096
	}

	if err := h.repo.Create(tpl); err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to create template",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, tpl)
}

// GetTemplate 获取单个模板
// @Summary 获取单个模板
// @Tags templates
// @Produce json
// @Param id path int true "模板 ID"
// @Success 200 {object} models.PromptTemplate
// @Router /api/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	tpl, err := h.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, prompt.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Template not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to get template",
			},
		})
		return
	}

	c.JSON(http.StatusOK, tpl)
}

// ListTemplates 获取模板列表
// 可选 scene 查询参数按场景过滤
// @Summary 获取模板列表
// @Tags templates
// @Produce json
// @Param scene query string false "按场景过滤"
// @Success 200 {array} models.PromptTemplate
// @Router /api/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	var (
		templates []*models.PromptTemplate
		err       error
	)
	if sc := c.Query("scene"); sc != "" {
		templates, err = h.repo.FindByScene(models.Scene(sc))
	} else {
		templates, err = h.repo.FindAll()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to list templates",
			},
		})
		return
	}

	c.JSON(http.StatusOK, templates)
}

// UpdateTemplate 更新模板
// 内置模板也允许更新（解绑/换绑模型是常见操作），只有
// 删除被拒绝
// @Summary 更新模板
// @Tags templates
// @Accept json
// @Produce json
// @Param id path int true "模板 ID"
// @Success 200 {object} models.PromptTemplate
// @Router /api/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateTemplateRequest
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

	tpl, err := h.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, prompt.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Template not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to get template",
			},
		})
		return
	}

	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.SystemPrompt != nil {
		tpl.SystemPrompt = *req.SystemPrompt
	}
	if req.UserPromptTemplate != nil {
		tpl.UserPromptTemplate = *req.UserPromptTemplate
	}
	if req.ResponseLanguage != nil {
		tpl.ResponseLanguage = *req.ResponseLanguage
	}
	if req.OutputFormat != nil {
		tpl.OutputFormat = *req.OutputFormat
	}
	if req.Temperature != nil {
		if *req.Temperature < 0 || *req.Temperature > 2 {
			c.JSON(http.StatusBadRequest, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "VALIDATION_ERROR",
					Message: "temperature must be in [0, 2]",
				},
			})
			return
		}
		tpl.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		tpl.MaxTokens = *req.MaxTokens
	}
	if req.ClearBoundModel {
		tpl.BoundModelID = nil
	} else if req.BoundModelID != nil {
		tpl.BoundModelID = req.BoundModelID
	}
	if req.SortOrder != nil {
		tpl.SortOrder = *req.SortOrder
	}

	if err := h.repo.Update(tpl); err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to update template",
			},
		})
		return
	}

	c.JSON(http.StatusOK, tpl)
}

// DeleteTemplate 删除模板（内置模板拒绝删除）
// @Summary 删除模板
// @Tags templates
// @Param id path int true "模板 ID"
// @Success 204
// @Router /api/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(id); err != nil {
		switch {
		case errors.Is(err, prompt.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Template not found",
				},
			})
		case errors.Is(err, prompt.ErrBuiltInTemplate):
			c.JSON(http.StatusForbidden, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "BUILT_IN",
					Message: "Built-in template cannot be deleted",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "INTERNAL_ERROR",
					Message: "Failed to delete template",
				},
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
