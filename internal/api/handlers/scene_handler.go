package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/prompt"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/scene"
)

// SceneHandler 场景默认模型 HTTP 处理器
type SceneHandler struct {
	resolver  *scene.Resolver
	providers *provider.Service
	templates *prompt.Repository
}

// NewSceneHandler 创建 SceneHandler 实例
func NewSceneHandler(resolver *scene.Resolver, providers *provider.Service, templates *prompt.Repository) *SceneHandler {
	return &SceneHandler{resolver: resolver, providers: providers, templates: templates}
}

// ListScenes 列出全部场景
// @Summary 列出全部场景
// @Tags scenes
// @Produce json
// @Success 200 {array} string
// @Router /api/scenes [get]
func (h *SceneHandler) ListScenes(c *gin.Context) {
	c.JSON(http.StatusOK, models.AllScenes())
}

// setSceneDefaultRequest 设置场景默认模型请求
// model_id 为 0 或缺省时清除该场景的覆盖
type setSceneDefaultRequest struct {
	ModelID uint `json:"model_id"`
}

// SetSceneDefault 设置或清除场景默认模型
// @Summary 设置场景默认模型
// @Tags scenes
// @Accept json
// @Param scene path string true "场景标识"
// @Param request body setSceneDefaultRequest true "模型 ID，0 清除"
// @Success 204
// @Router /api/scenes/{scene}/default [put]
func (h *SceneHandler) SetSceneDefault(c *gin.Context) {
	sc, ok := parseScene(c)
	if !ok {
		return
	}

	var req setSceneDefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request parameters",
			},
		})
		return
	}

	var target *models.Model
	if req.ModelID > 0 {
		model, err := h.providers.GetModel(req.ModelID)
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
		target = model
	}

	if err := h.resolver.SetSceneDefault(target, sc); err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to set scene default",
			},
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// sceneModelResponse 场景生效模型响应
type sceneModelResponse struct {
	Scene      models.Scene  `json:"scene"`
	Configured bool          `json:"configured"`
	Model      *models.Model `json:"model,omitempty"`
}

// GetSceneModel 查询场景当前生效的模型
// 走完整的三级解析（模板绑定 → 场景覆盖 → 全局默认），
// 没有可用模型时 configured 为 false 而非报错
// @Summary 查询场景生效模型
// @Tags scenes
// @Produce json
// @Param scene path string true "场景标识"
// @Success 200 {object} sceneModelResponse
// @Router /api/scenes/{scene}/model [get]
func (h *SceneHandler) GetSceneModel(c *gin.Context) {
	sc, ok := parseScene(c)
	if !ok {
		return
	}

	var tpl *models.PromptTemplate
	if candidates, err := h.templates.FindByScene(sc); err == nil && len(candidates) > 0 {
		tpl = candidates[0]
	}

	model, err := h.resolver.Resolve(tpl, sc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to resolve scene model",
			},
		})
		return
	}

	c.JSON(http.StatusOK, sceneModelResponse{
		Scene:      sc,
		Configured: model != nil,
		Model:      model,
	})
}

// ClearAllSceneDefaults 清空全部场景覆盖
// @Summary 清空全部场景默认模型
// @Tags scenes
// @Success 204
// @Router /api/scenes/defaults [delete]
func (h *SceneHandler) ClearAllSceneDefaults(c *gin.Context) {
	if err := h.resolver.ClearAllSceneDefaults(); err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to clear scene defaults",
			},
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// parseScene 校验路径里的场景标识，失败时写入 400 响应
func parseScene(c *gin.Context) (models.Scene, bool) {
	sc := models.Scene(c.Param("scene"))
	if sc == models.SceneCustom {
		return sc, true
	}
	for _, known := range models.AllScenes() {
		if sc == known {
			return sc, true
		}
	}
	c.JSON(http.StatusBadRequest, provider.ErrorResponse{
		Error: provider.ErrorDetail{
			Code:    "INVALID_SCENE",
			Message: "Unknown scene",
		},
	})
	return "", false
}
