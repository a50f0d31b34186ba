// Package usage 用量记录与费用统计
package usage

import (
	"time"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/gorm"
)

// Repository 用量记录数据访问层（只追加）
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建 Repository 实例
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 追加一条用量记录
func (r *Repository) Create(record *models.UsageRecord) error {
	return r.db.Create(record).Error
}

// FindByDateRange 按日期区间查询用量记录
func (r *Repository) FindByDateRange(from, to time.Time) ([]*models.UsageRecord, error) {
	var records []*models.UsageRecord
	err := r.db.Where("date >= ? AND date < ?", from, to).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

// Summary 用量汇总
type Summary struct {
	TotalRequests int     `json:"total_requests"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalCost     float64 `json:"total_cost"`
}

// Summarize 汇总日期区间内的总请求数、token 量与费用
func (r *Repository) Summarize(from, to time.Time) (*Summary, error) {
	var result struct {
		Count        int64
		InputTokens  int64
		OutputTokens int64
		Cost         float64
	}

	err := r.db.Model(&models.UsageRecord{}).
		Select("COUNT(*) as count, COALESCE(SUM(input_tokens),0) as input_tokens, COALESCE(SUM(output_tokens),0) as output_tokens, COALESCE(SUM(cost),0) as cost").
		Where("date >= ? AND date < ?", from, to).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalRequests: int(result.Count),
		InputTokens:   int(result.InputTokens),
		OutputTokens:  int(result.OutputTokens),
		TotalCost:     result.Cost,
	}, nil
}
