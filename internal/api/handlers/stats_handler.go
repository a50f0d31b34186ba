package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/usage"
)

// StatsHandler 用量统计 HTTP 处理器
type StatsHandler struct {
	repo *usage.Repository
}

// NewStatsHandler 创建 StatsHandler 实例
func NewStatsHandler(repo *usage.Repository) *StatsHandler {
	return &StatsHandler{repo: repo}
}

// dateRange 解析 from/to 查询参数，缺省为最近 30 天
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "VALIDATION_ERROR",
					Message: "from must be YYYY-MM-DD",
				},
			})
			return from, to, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, provider.ErrorResponse{
				Error: provider.ErrorDetail{
					Code:    "VALIDATION_ERROR",
					Message: "to must be YYYY-MM-DD",
				},
			})
			return from, to, false
		}
		// 闭区间：包含 to 当天
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, true
}

// GetSummary 区间用量汇总
// @Summary 用量汇总
// @Tags stats
// @Produce json
// @Param from query string false "起始日期 YYYY-MM-DD"
// @Param to query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} usage.Summary
// @Router /api/stats/summary [get]
func (h *StatsHandler) GetSummary(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	summary, err := h.repo.Summarize(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to summarize usage",
			},
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListRecords 区间用量明细
// @Summary 用量明细
// @Tags stats
// @Produce json
// @Param from query string false "起始日期 YYYY-MM-DD"
// @Param to query string false "结束日期 YYYY-MM-DD"
// @Success 200 {array} models.UsageRecord
// @Router /api/stats/records [get]
func (h *StatsHandler) ListRecords(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	records, err := h.repo.FindByDateRange(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to list usage records",
			},
		})
		return
	}

	c.JSON(http.StatusOK, records)
}
