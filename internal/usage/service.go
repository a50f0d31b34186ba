package usage

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/llm"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
)

// Service 用量记账服务
// 每次完成的 LLM 调用产出一条 UsageRecord：token 数优先取
// 供应商返回的数字，费用 = token 数 × 每百万 token 单价
type Service struct {
	repo *Repository
}

// NewService 创建 Service 实例
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// RecordCall 记录一次完成的调用
// reported 为零值时退回估算；模型名与供应商名反范式化冗余，
// 供应商被删除后历史依然可读
func (s *Service) RecordCall(model *models.Model, providerName string, messages []llm.ChatMessage, responseText string, reported llm.Usage, requestType string) (*models.UsageRecord, error) {
	inputTokens := reported.InputTokens
	outputTokens := reported.OutputTokens

	if inputTokens == 0 && outputTokens == 0 {
		inputTokens = EstimateMessagesTokens(messages)
		outputTokens = EstimateTokens(responseText)
	}

	record := &models.UsageRecord{
		ID:           uuid.NewString(),
		ModelID:      model.ID,
		ModelName:    model.DisplayName,
		ProviderName: providerName,
		Date:         time.Now(),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         CalculateCost(model, inputTokens, outputTokens),
		RequestType:  requestType,
	}

	if err := s.repo.Create(record); err != nil {
		return nil, err
	}

	log.Printf("📊 [用量] %s: input=%d, output=%d, cost=$%.6f",
		record.ModelName, inputTokens, outputTokens, record.Cost)

	return record, nil
}

// CalculateCost 按模型单价计算费用
// 未配置单价的维度按 0 计
func CalculateCost(model *models.Model, inputTokens, outputTokens int) float64 {
	var cost float64
	if model.InputPrice != nil {
		cost += float64(inputTokens) * *model.InputPrice / 1_000_000
	}
	if model.OutputPrice != nil {
		cost += float64(outputTokens) * *model.OutputPrice / 1_000_000
	}
	return cost
}
