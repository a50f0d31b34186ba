package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// OpenAIAdapter OpenAI 兼容协议适配器
// 覆盖 OpenAI / DeepSeek / OpenRouter / 智谱 / DashScope /
// MiniMax 以及任何共享 /chat/completions 协议的自定义端点
type OpenAIAdapter struct {
	baseURL string
	apiKey  string
	headers map[string]string
	client  *http.Client
}

// NewOpenAIAdapter 创建 OpenAI 兼容适配器
// headers 中的自定义请求头会覆盖同名默认头
func NewOpenAIAdapter(baseURL, apiKey string, headers map[string]string) *OpenAIAdapter {
	return &OpenAIAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		headers: headers,
		client:  newHTTPClient(),
	}
}

// ==================== 线上协议类型 ====================

type openAIChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *openAIUsage `json:"usage"`
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *openAIUsage `json:"usage"`
}

// ==================== Adapter 实现 ====================

func (a *OpenAIAdapter) endpoint() string {
	return strings.TrimSuffix(a.baseURL, "/") + "/chat/completions"
}

// applyHeaders 先设默认头再覆盖自定义头
func (a *OpenAIAdapter) applyHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	for key, value := range a.headers {
		req.Header.Set(key, value)
	}
}

// Complete 发送完整会话并返回完整回复
func (a *OpenAIAdapter) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if req.StreamInternally {
		text, usage, err := CollectStream(a.CompleteStream(ctx, req))
		if err != nil {
			return nil, err
		}
		return &CompletionResult{Text: text, Usage: usage}, nil
	}

	payload := openAIChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	httpReq, err := buildJSONRequest(ctx, a.endpoint(), payload)
	if err != nil {
		return nil, err
	}
	a.applyHeaders(httpReq)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, terminalError(ctx, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, terminalError(ctx, err)
	}

	var decoded openAIChatResponse
	if err := json.Unmarshal(body, &decoded); err != nil || len(decoded.Choices) == 0 {
		return nil, ErrInvalidResponse
	}

	result := &CompletionResult{Text: decoded.Choices[0].Message.Content}
	if decoded.Usage != nil {
		result.Usage = Usage{
			InputTokens:  decoded.Usage.PromptTokens,
			OutputTokens: decoded.Usage.CompletionTokens,
		}
	}
	return result, nil
}

// CompleteStream 流式补全
// data: [DONE] 是终止哨兵，必须先于 JSON 解析识别
func (a *OpenAIAdapter) CompleteStream(ctx context.Context, req *CompletionRequest) <-chan StreamChunk {
	out := make(chan StreamChunk, 1)

	go func() {
		defer close(out)

		payload := openAIChatRequest{
			Model:       req.Model,
			Messages:    req.Messages,
			Stream:      true,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}

		httpReq, err := buildJSONRequest(ctx, a.endpoint(), payload)
		if err != nil {
			out <- StreamChunk{Err: err}
			return
		}
		a.applyHeaders(httpReq)
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := a.client.Do(httpReq)
		if err != nil {
			out <- StreamChunk{Err: terminalError(ctx, err)}
			return
		}
		defer resp.Body.Close()

		if err := checkStatus(resp); err != nil {
			out <- StreamChunk{Err: err}
			return
		}

		reader := newSSEReader(resp.Body)
		var usage *Usage

		for {
			ev, err := reader.Next()
			if err == io.EOF {
				// 上游没发 [DONE] 就断流，按正常结束处理
				sendTerminal(out, StreamChunk{Usage: usage})
				return
			}
			if err != nil {
				sendTerminal(out, StreamChunk{Err: terminalError(ctx, err)})
				return
			}

			if ev.Data == "[DONE]" {
				sendTerminal(out, StreamChunk{Usage: usage})
				return
			}

			var chunk openAIStreamChunk
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				// 无法解析的事件跳过，不中断整条流
				continue
			}

			if chunk.Usage != nil {
				usage = &Usage{
					InputTokens:  chunk.Usage.PromptTokens,
					OutputTokens: chunk.Usage.CompletionTokens,
				}
			}

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				if !sendChunk(ctx, out, StreamChunk{Text: chunk.Choices[0].Delta.Content}) {
					sendTerminal(out, StreamChunk{Err: ErrCancelled})
					return
				}
			}
		}
	}()

	return out
}
