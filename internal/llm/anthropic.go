package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// AnthropicAdapter Claude Messages API 适配器
// 统一的 role/content 对在这里被拆成独立的 system 字段
// 与 messages 数组，流式事件按类型化 SSE 解析
type AnthropicAdapter struct {
	baseURL string
	apiKey  string
	headers map[string]string
	client  *http.Client
}

// NewAnthropicAdapter 创建 Anthropic 适配器
func NewAnthropicAdapter(baseURL, apiKey string, headers map[string]string) *AnthropicAdapter {
	return &AnthropicAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		headers: headers,
		client:  newHTTPClient(),
	}
}

// ==================== 线上协议类型 ====================

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage anthropicUsage `json:"usage"`
}

// anthropicStreamEvent 类型化流事件
// message_start / content_block_delta / message_delta / message_stop
type anthropicStreamEvent struct {
	Type    string `json:"type"`
	Message *struct {
		Usage anthropicUsage `json:"usage"`
	} `json:"message,omitempty"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta,omitempty"`
	Usage *anthropicUsage `json:"usage,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ==================== Adapter 实现 ====================

func (a *AnthropicAdapter) endpoint() string {
	return strings.TrimSuffix(a.baseURL, "/") + "/messages"
}

func (a *AnthropicAdapter) applyHeaders(req *http.Request) {
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	for key, value := range a.headers {
		req.Header.Set(key, value)
	}
}

// buildPayload 拆分 system 消息并构造请求体
// Messages API 不接受 role=system 的消息，多条 system 拼接
func (a *AnthropicAdapter) buildPayload(req *CompletionRequest, stream bool) anthropicRequest {
	var systemParts []string
	messages := make([]anthropicMessage, 0, len(req.Messages))

	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		messages = append(messages, anthropicMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096 // max_tokens 是 Messages API 的必填字段
	}

	return anthropicRequest{
		Model:       req.Model,
		System:      strings.Join(systemParts, "\n"),
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
}

// Complete 发送完整会话并返回完整回复
func (a *AnthropicAdapter) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if req.StreamInternally {
		text, usage, err := CollectStream(a.CompleteStream(ctx, req))
		if err != nil {
			return nil, err
		}
		return &CompletionResult{Text: text, Usage: usage}, nil
	}

	httpReq, err := buildJSONRequest(ctx, a.endpoint(), a.buildPayload(req, false))
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

	var decoded anthropicResponse
	if err := json.Unmarshal(body, &decoded); err != nil || len(decoded.Content) == 0 {
		return nil, ErrInvalidResponse
	}

	var text strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &CompletionResult{
		Text: text.String(),
		Usage: Usage{
			InputTokens:  decoded.Usage.InputTokens,
			OutputTokens: decoded.Usage.OutputTokens,
		},
	}, nil
}

// CompleteStream 流式补全
// 文本增量来自 content_block_delta 的 text_delta，
// 输出 token 数在 message_delta 的 usage 上
func (a *AnthropicAdapter) CompleteStream(ctx context.Context, req *CompletionRequest) <-chan StreamChunk {
	out := make(chan StreamChunk, 1)

	go func() {
		defer close(out)

		httpReq, err := buildJSONRequest(ctx, a.endpoint(), a.buildPayload(req, true))
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
		usage := &Usage{}

		for {
			ev, err := reader.Next()
			if err == io.EOF {
				sendTerminal(out, StreamChunk{Usage: usage})
				return
			}
			if err != nil {
				sendTerminal(out, StreamChunk{Err: terminalError(ctx, err)})
				return
			}

			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
				continue
			}

			switch event.Type {
			case "message_start":
				if event.Message != nil {
					usage.InputTokens = event.Message.Usage.InputTokens
				}
			case "content_block_delta":
				if event.Delta != nil && event.Delta.Type == "text_delta" && event.Delta.Text != "" {
					if !sendChunk(ctx, out, StreamChunk{Text: event.Delta.Text}) {
						sendTerminal(out, StreamChunk{Err: ErrCancelled})
						return
					}
				}
			case "message_delta":
				if event.Usage != nil {
					usage.OutputTokens = event.Usage.OutputTokens
				}
			case "message_stop":
				sendTerminal(out, StreamChunk{Usage: usage})
				return
			case "error":
				msg := "stream error"
				if event.Error != nil {
					msg = event.Error.Message
				}
				sendTerminal(out, StreamChunk{Err: NewRequestError(http.StatusBadGateway, msg)})
				return
			}
			// ping / content_block_start / content_block_stop 无需处理
		}
	}()

	return out
}
