// Package chat 论文对话编排
// 组装接地上下文 → 解析生效模型 → 先落库用户消息再发起
// 请求 → 路由补全 → 记账。空结果不落库
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/docctx"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/llm"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/prompt"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/scene"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/usage"
	"gorm.io/gorm"
)

var (
	// ErrNotConfigured 没有可用的模型（三级解析全部落空或供应商停用）
	// 调用方应将其呈现为“请先配置模型”的引导而非技术错误
	ErrNotConfigured = errors.New("no model configured")
	// ErrPaperNotFound 论文不存在
	ErrPaperNotFound = errors.New("paper not found")
)

// Service 对话编排服务
type Service struct {
	db        *gorm.DB
	router    *llm.Router
	resolver  *scene.Resolver
	templates *prompt.Repository
	providers *provider.Repository
	usage     *usage.Service
}

// NewService 创建 Service 实例
func NewService(db *gorm.DB, router *llm.Router, resolver *scene.Resolver, templates *prompt.Repository, providers *provider.Repository, usageSvc *usage.Service) *Service {
	return &Service{
		db:        db,
		router:    router,
		resolver:  resolver,
		templates: templates,
		providers: providers,
		usage:     usageSvc,
	}
}

// TurnRequest 一轮对话请求
type TurnRequest struct {
	ConversationID string       `json:"conversation_id"` // 空则新建会话
	PaperID        uint         `json:"paper_id" binding:"required"`
	Query          string       `json:"query" binding:"required"`
	SelectedText   string       `json:"selected_text"`
	Scene          models.Scene `json:"scene"`
	TemplateID     uint         `json:"template_id"` // 0 表示用场景下第一个模板
}

// TurnResult 一轮对话结果
type TurnResult struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	ModelName      string `json:"model_name"`
}

// turnPlan 一轮对话的执行计划（解析与组装的产物）
type turnPlan struct {
	conversationID string
	paper          *models.Paper
	template       *models.PromptTemplate
	model          *models.Model
	provider       *models.Provider
	messages       []llm.ChatMessage
}

// prepare 解析模型、组装消息并落库用户消息
// 用户消息必须在请求发出前持久化：中途崩溃时提问不丢失
func (s *Service) prepare(req *TurnRequest) (*turnPlan, error) {
	var paper models.Paper
	if err := s.db.First(&paper, req.PaperID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}

	sc := req.Scene
	if sc == "" {
		sc = models.ScenePaperChat
	}

	template, err := s.lookupTemplate(req.TemplateID, sc)
	if err != nil {
		return nil, err
	}

	model, err := s.resolver.Resolve(template, sc)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, ErrNotConfigured
	}

	prov, err := s.providers.FindByID(model.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("%w: provider missing", ErrNotConfigured)
	}
	if !prov.Enabled {
		return nil, fmt.Errorf("%w: provider disabled", ErrNotConfigured)
	}

	userPrompt := req.Query
	if template != nil && template.UserPromptTemplate != "" {
		userPrompt = prompt.ResolveVariables(template.UserPromptTemplate, &paper, req.SelectedText)
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	// 接地系统消息 + 历史 + 本轮用户消息
	messages := []llm.ChatMessage{{
		Role:    llm.RoleSystem,
		Content: docctx.BuildSystemContext(&paper, req.Query, model.ContextWindow),
	}}

	history, err := s.loadHistory(conversationID)
	if err != nil {
		return nil, err
	}
	messages = append(messages, history...)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: userPrompt})

	record := &models.ChatRecord{
		ConversationID: conversationID,
		PaperID:        paper.ID,
		Role:           string(llm.RoleUser),
		Content:        userPrompt,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, err
	}

	return &turnPlan{
		conversationID: conversationID,
		paper:          &paper,
		template:       template,
		model:          model,
		provider:       prov,
		messages:       messages,
	}, nil
}

// completionRequest 由执行计划构造补全请求
func (p *turnPlan) completionRequest(streamInternally bool) *llm.CompletionRequest {
	req := &llm.CompletionRequest{
		Model:            p.model.ModelID,
		Messages:         p.messages,
		StreamInternally: streamInternally,
	}
	if p.template != nil {
		temp := p.template.Temperature
		req.Temperature = &temp
		req.MaxTokens = p.template.MaxTokens
	}
	return req
}

// Ask 非流式一轮对话
// 内部仍走流式传输（更稳健的代码路径），聚合后返回
func (s *Service) Ask(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	plan, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	result, err := s.router.Complete(ctx, plan.provider, plan.completionRequest(true))
	if err != nil {
		return nil, err
	}

	s.finishTurn(plan, result.Text, result.Usage)

	return &TurnResult{
		ConversationID: plan.conversationID,
		Reply:          result.Text,
		ModelName:      plan.model.DisplayName,
	}, nil
}

// AskStream 流式一轮对话
// 返回的通道转发适配器片段；终止时落库助手消息与用量。
// 取消时已累积的部分文本视为有效（但不完整）的助手轮次
func (s *Service) AskStream(ctx context.Context, req *TurnRequest) (<-chan llm.StreamChunk, string, error) {
	plan, err := s.prepare(req)
	if err != nil {
		return nil, "", err
	}

	upstream := s.router.CompleteStream(ctx, plan.provider, plan.completionRequest(false))
	out := make(chan llm.StreamChunk, 1)

	go func() {
		defer close(out)

		var text string
		var reported llm.Usage

		for chunk := range upstream {
			if chunk.Usage != nil {
				reported = *chunk.Usage
			}
			if chunk.Err == nil {
				text += chunk.Text
			}
			out <- chunk

			if chunk.Err != nil {
				// 取消保留部分内容；真正的失败丢弃本轮
				if errors.Is(chunk.Err, llm.ErrCancelled) {
					s.finishTurn(plan, text, reported)
				}
				return
			}
		}

		s.finishTurn(plan, text, reported)
	}()

	return out, plan.conversationID, nil
}

// finishTurn 落库助手消息并记账
// 零内容的完成（空补全或取消前未收到任何片段）不作为
// 对话轮次持久化
func (s *Service) finishTurn(plan *turnPlan, text string, reported llm.Usage) {
	if text == "" {
		log.Printf("⚠️  [对话] 空补全结果，跳过落库 (conversation=%s)", plan.conversationID)
		return
	}

	record := &models.ChatRecord{
		ConversationID: plan.conversationID,
		PaperID:        plan.paper.ID,
		Role:           string(llm.RoleAssistant),
		Content:        text,
	}
	if err := s.db.Create(record).Error; err != nil {
		log.Printf("❌ [对话] 助手消息落库失败: %v", err)
	}

	if _, err := s.usage.RecordCall(plan.model, plan.provider.Name, plan.messages, text, reported, "chat"); err != nil {
		log.Printf("❌ [对话] 用量记录失败: %v", err)
	}
}

// lookupTemplate 查找模板：显式 ID 优先，否则取场景下第一个
func (s *Service) lookupTemplate(templateID uint, sc models.Scene) (*models.PromptTemplate, error) {
	if templateID > 0 {
		return s.templates.FindByID(templateID)
	}

	candidates, err := s.templates.FindByScene(sc)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[0], nil
}

// loadHistory 读取会话历史（不含系统消息）
func (s *Service) loadHistory(conversationID string) ([]llm.ChatMessage, error) {
	var records []models.ChatRecord
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	messages := make([]llm.ChatMessage, 0, len(records))
	for _, r := range records {
		messages = append(messages, llm.ChatMessage{
			Role:    llm.Role(r.Role),
			Content: r.Content,
		})
	}
	return messages, nil
}
