package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/secret"
)

// defaultBaseURLs 各供应商类型的默认 API 根地址（含版本段）
var defaultBaseURLs = map[models.ProviderType]string{
	models.ProviderOpenAI:     "https://api.openai.com/v1",
	models.ProviderAnthropic:  "https://api.anthropic.com/v1",
	models.ProviderGoogle:     "https://generativelanguage.googleapis.com/v1beta",
	models.ProviderDeepSeek:   "https://api.deepseek.com/v1",
	models.ProviderOpenRouter: "https://openrouter.ai/api/v1",
	models.ProviderZhipu:      "https://open.bigmodel.cn/api/paas/v4",
	models.ProviderDashScope:  "https://dashscope.aliyuncs.com/compatible-mode/v1",
	models.ProviderMiniMax:    "https://api.minimax.chat/v1",
}

// OpenRouter 归因请求头的默认值，调用方已设置时不覆盖
const (
	openRouterRefererHeader = "HTTP-Referer"
	openRouterTitleHeader   = "X-Title"
	openRouterRefererValue  = "https://github.com/sheldon123z/ArxivLearner"
	openRouterTitleValue    = "ArxivLearner"
)

// Router 补全请求路由器
// 按供应商类型分发到对应 Adapter 家族，凭证通过注入的
// secret.Store 每次请求现取，不在任何长生命周期结构中缓存
type Router struct {
	secrets secret.Store
}

// NewRouter 创建路由器
func NewRouter(secrets secret.Store) *Router {
	return &Router{secrets: secrets}
}

// ResolveAdapter 为供应商解析出具体的 Adapter
// 凭证缺失时以空字符串继续：是否有效由上游 401 裁决，
// 本层不做先验校验
func (r *Router) ResolveAdapter(prov *models.Provider) (Adapter, error) {
	apiKey, err := r.secrets.Retrieve(prov.CredentialRef)
	if err != nil {
		return nil, fmt.Errorf("读取凭证失败: %w", err)
	}

	baseURL := prov.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURLs[prov.Type]
	}

	headers := parseCustomHeaders(prov.CustomHeaders)

	if prov.Type == models.ProviderOpenRouter {
		if _, ok := headers[openRouterRefererHeader]; !ok {
			headers[openRouterRefererHeader] = openRouterRefererValue
		}
		if _, ok := headers[openRouterTitleHeader]; !ok {
			headers[openRouterTitleHeader] = openRouterTitleValue
		}
	}

	switch {
	case prov.Type == models.ProviderAnthropic:
		return NewAnthropicAdapter(baseURL, apiKey, headers), nil
	case prov.Type == models.ProviderGoogle:
		return NewGeminiAdapter(baseURL, apiKey, headers), nil
	case prov.Type.IsOpenAICompatible():
		return NewOpenAIAdapter(baseURL, apiKey, headers), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProviderType, prov.Type)
	}
}

// Complete 解析 Adapter 并发起非流式补全
func (r *Router) Complete(ctx context.Context, prov *models.Provider, req *CompletionRequest) (*CompletionResult, error) {
	adapter, err := r.ResolveAdapter(prov)
	if err != nil {
		return nil, err
	}
	return adapter.Complete(ctx, req)
}

// CompleteStream 解析 Adapter 并发起流式补全
// 解析失败不同步抛出，而是作为流的终止错误返回，
// 保持“流是失败的单位”契约
func (r *Router) CompleteStream(ctx context.Context, prov *models.Provider, req *CompletionRequest) <-chan StreamChunk {
	adapter, err := r.ResolveAdapter(prov)
	if err != nil {
		return errorStream(err)
	}
	return adapter.CompleteStream(ctx, req)
}

// ConnectivityResult 连通性探测结果
type ConnectivityResult struct {
	Success   bool   `json:"success"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// TestConnectivity 连通性探测
// 用一条最小消息走完整的非流式 Complete 路径，无论成败
// 都测量往返耗时；所有错误转为人类可读字符串，永不抛出
func (r *Router) TestConnectivity(ctx context.Context, prov *models.Provider, modelID string) *ConnectivityResult {
	start := time.Now()

	req := &CompletionRequest{
		Model:     modelID,
		Messages:  []ChatMessage{{Role: RoleUser, Content: "Hi"}},
		MaxTokens: 16,
	}

	_, err := r.Complete(ctx, prov, req)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		log.Printf("❌ [连通性] %s/%s 探测失败 (%dms): %v", prov.Name, modelID, latency, err)
		return &ConnectivityResult{
			Success:   false,
			LatencyMs: latency,
			Error:     HumanMessage(err),
		}
	}

	log.Printf("✅ [连通性] %s/%s 探测成功 (%dms)", prov.Name, modelID, latency)
	return &ConnectivityResult{Success: true, LatencyMs: latency}
}

// parseCustomHeaders 解析供应商配置里的自定义请求头
// 解析失败视为没有自定义头
func parseCustomHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	if raw == "" {
		return headers
	}
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return make(map[string]string)
	}
	return headers
}
