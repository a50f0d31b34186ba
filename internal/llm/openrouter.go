package llm

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// openRouterModelsURL OpenRouter 模型发现端点
const openRouterModelsURL = "https://openrouter.ai/api/v1/models"

// OpenRouterModel 发现端点返回的模型条目
// 响应中只取 id 和 name，其余字段忽略
type OpenRouterModel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// fallbackOpenRouterModels 拉取失败时的静态兜底列表
// UI 层永远不应该拿到空列表或错误
var fallbackOpenRouterModels = []OpenRouterModel{
	{ID: "anthropic/claude-sonnet-4", Name: "Anthropic: Claude Sonnet 4"},
	{ID: "openai/gpt-4o", Name: "OpenAI: GPT-4o"},
	{ID: "google/gemini-2.0-flash-001", Name: "Google: Gemini 2.0 Flash"},
	{ID: "deepseek/deepseek-chat", Name: "DeepSeek: DeepSeek V3"},
}

// FetchOpenRouterModels 拉取 OpenRouter 可用模型列表
// 网络错误、非 2xx、解码失败一律降级为静态兜底列表
func FetchOpenRouterModels(ctx context.Context) []OpenRouterModel {
	return FetchOpenRouterModelsFrom(ctx, openRouterModelsURL)
}

// FetchOpenRouterModelsFrom 从指定端点拉取模型列表
func FetchOpenRouterModelsFrom(ctx context.Context, modelsURL string) []OpenRouterModel {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, nil)
	if err != nil {
		return fallbackOpenRouterModels
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("⚠️  [OpenRouter] 模型列表拉取失败，使用兜底列表: %v", err)
		return fallbackOpenRouterModels
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️  [OpenRouter] 模型列表返回 HTTP %d，使用兜底列表", resp.StatusCode)
		return fallbackOpenRouterModels
	}

	var decoded struct {
		Data []OpenRouterModel `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || len(decoded.Data) == 0 {
		log.Printf("⚠️  [OpenRouter] 模型列表解析失败，使用兜底列表")
		return fallbackOpenRouterModels
	}

	return decoded.Data
}
