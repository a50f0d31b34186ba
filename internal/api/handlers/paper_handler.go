package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
	"gorm.io/gorm"
)

// PaperHandler 论文 HTTP 处理器
// 搜索与下载在协作方完成，这里只维护元数据与转换后的全文
type PaperHandler struct {
	db *gorm.DB
}

// NewPaperHandler 创建 PaperHandler 实例
func NewPaperHandler(db *gorm.DB) *PaperHandler {
	return &PaperHandler{db: db}
}

// createPaperRequest 导入论文请求
type createPaperRequest struct {
	ArxivID    string `json:"arxiv_id" binding:"required"`
	Title      string `json:"title"`
	Abstract   string `json:"abstract"`
	Authors    string `json:"authors"`
	Categories string `json:"categories"`
	FullText   string `json:"full_text"`
}

// CreatePaper 导入论文
// @Summary 导入论文
// @Tags papers
// @Accept json
// @Produce json
// @Success 201 {object} models.Paper
// @Router /api/papers [post]
func (h *PaperHandler) CreatePaper(c *gin.Context) {
	var req createPaperRequest
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

	paper := &models.Paper{
		ArxivID:    req.ArxivID,
		Title:      req.Title,
		Abstract:   req.Abstract,
		Authors:    req.Authors,
		Categories: req.Categories,
		FullText:   req.FullText,
	}
	if err := h.db.Create(paper).Error; err != nil {
		c.JSON(http.StatusConflict, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "CONFLICT",
				Message: "Paper already exists or cannot be saved",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, paper)
}

// GetPaper 获取单篇论文
// @Summary 获取单篇论文
// @Tags papers
// @Produce json
// @Param id path int true "论文 ID"
// @Success 200 {object} models.Paper
// @Router /api/papers/{id} [get]
func (h *PaperHandler) GetPaper(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var paper models.Paper
	if err := h.db.First(&paper, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Paper not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to get paper",
			},
		})
		return
	}

	c.JSON(http.StatusOK, paper)
}

// ListPapers 获取论文列表
// @Summary 获取论文列表
// @Tags papers
// @Produce json
// @Success 200 {array} models.Paper
// @Router /api/papers [get]
func (h *PaperHandler) ListPapers(c *gin.Context) {
	var papers []models.Paper
	if err := h.db.Order("created_at DESC").Find(&papers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to list papers",
			},
		})
		return
	}

	c.JSON(http.StatusOK, papers)
}

// updatePaperRequest 更新论文请求
// 主要用于 PDF 转换完成后回填全文
type updatePaperRequest struct {
	Title      *string `json:"title"`
	Abstract   *string `json:"abstract"`
	Authors    *string `json:"authors"`
	Categories *string `json:"categories"`
	FullText   *string `json:"full_text"`
}

// UpdatePaper 更新论文元数据或回填全文
// @Summary 更新论文
// @Tags papers
// @Accept json
// @Produce json
// @Param id path int true "论文 ID"
// @Success 200 {object} models.Paper
// @Router /api/papers/{id} [put]
func (h *PaperHandler) UpdatePaper(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request parameters",
			},
		})
		return
	}

	var paper models.Paper
	if err := h.db.First(&paper, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Paper not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to get paper",
			},
		})
		return
	}

	if req.Title != nil {
		paper.Title = *req.Title
	}
	if req.Abstract != nil {
		paper.Abstract = *req.Abstract
	}
	if req.Authors != nil {
		paper.Authors = *req.Authors
	}
	if req.Categories != nil {
		paper.Categories = *req.Categories
	}
	if req.FullText != nil {
		paper.FullText = *req.FullText
	}

	if err := h.db.Save(&paper).Error; err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to update paper",
			},
		})
		return
	}

	c.JSON(http.StatusOK, paper)
}

// DeletePaper 删除论文
// @Summary 删除论文
// @Tags papers
// @Param id path int true "论文 ID"
// @Success 204
// @Router /api/papers/{id} [delete]
func (h *PaperHandler) DeletePaper(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := h.db.Delete(&models.Paper{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to delete paper",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Paper not found",
			},
		})
		return
	}

	c.Status(http.StatusNoContent)
}
