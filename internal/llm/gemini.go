package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GeminiAdapter Google Gemini generateContent API 适配器
// 内容嵌套在 contents[].parts[].text 下而非 messages；
// 当模型具备 pdf_input 能力时，这里是唯一允许附带
// 原始文件负载的地方
type GeminiAdapter struct {
	baseURL string
	apiKey  string
	headers map[string]string
	client  *http.Client
}

// NewGeminiAdapter 创建 Gemini 适配器
func NewGeminiAdapter(baseURL, apiKey string, headers map[string]string) *GeminiAdapter {
	return &GeminiAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		headers: headers,
		client:  newHTTPClient(),
	}
}

// ==================== 线上协议类型 ====================

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiFileData `json:"inlineData,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user | model
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// ==================== Adapter 实现 ====================

func (a *GeminiAdapter) endpoint(model string, stream bool) string {
	base := strings.TrimSuffix(a.baseURL, "/")
	if stream {
		return fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", base, model)
	}
	return fmt.Sprintf("%s/models/%s:generateContent", base, model)
}

func (a *GeminiAdapter) applyHeaders(req *http.Request) {
	req.Header.Set("x-goog-api-key", a.apiKey)
	for key, value := range a.headers {
		req.Header.Set(key, value)
	}
}

// buildPayload 将统一消息转换为 contents/parts 结构
// system 消息进 systemInstruction，assistant 角色映射为 model
func (a *GeminiAdapter) buildPayload(req *CompletionRequest) geminiRequest {
	var systemParts []string
	contents := make([]geminiContent, 0, len(req.Messages))

	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}

		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	// 原始 PDF 负载附加在最后一条 user 内容上
	if len(req.PDFData) > 0 && len(contents) > 0 {
		last := &contents[len(contents)-1]
		last.Parts = append(last.Parts, geminiPart{
			InlineData: &geminiFileData{
				MimeType: "application/pdf",
				Data:     base64.StdEncoding.EncodeToString(req.PDFData),
			},
		})
	}

	payload := geminiRequest{Contents: contents}

	if len(systemParts) > 0 {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: strings.Join(systemParts, "\n")}},
		}
	}

	if req.Temperature != nil || req.MaxTokens > 0 {
		payload.GenerationConfig = &geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	return payload
}

// Complete 发送完整会话并返回完整回复
func (a *GeminiAdapter) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if req.StreamInternally {
		text, usage, err := CollectStream(a.CompleteStream(ctx, req))
		if err != nil {
			return nil, err
		}
		return &CompletionResult{Text: text, Usage: usage}, nil
	}

	httpReq, err := buildJSONRequest(ctx, a.endpoint(req.Model, false), a.buildPayload(req))
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

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil || len(decoded.Candidates) == 0 {
		return nil, ErrInvalidResponse
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	result := &CompletionResult{Text: text.String()}
	if decoded.UsageMetadata != nil {
		result.Usage = Usage{
			InputTokens:  decoded.UsageMetadata.PromptTokenCount,
			OutputTokens: decoded.UsageMetadata.CandidatesTokenCount,
		}
	}
	return result, nil
}

// CompleteStream 流式补全
// streamGenerateContent?alt=sse 的每个 data 行都是一个
// 与非流式同构的部分响应
func (a *GeminiAdapter) CompleteStream(ctx context.Context, req *CompletionRequest) <-chan StreamChunk {
	out := make(chan StreamChunk, 1)

	go func() {
		defer close(out)

		httpReq, err := buildJSONRequest(ctx, a.endpoint(req.Model, true), a.buildPayload(req))
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
				sendTerminal(out, StreamChunk{Usage: usage})
				return
			}
			if err != nil {
				sendTerminal(out, StreamChunk{Err: terminalError(ctx, err)})
				return
			}

			var chunk geminiResponse
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				continue
			}

			if chunk.UsageMetadata != nil {
				usage = &Usage{
					InputTokens:  chunk.UsageMetadata.PromptTokenCount,
					OutputTokens: chunk.UsageMetadata.CandidatesTokenCount,
				}
			}

			if len(chunk.Candidates) == 0 {
				continue
			}
			for _, part := range chunk.Candidates[0].Content.Parts {
				if part.Text == "" {
					continue
				}
				if !sendChunk(ctx, out, StreamChunk{Text: part.Text}) {
					sendTerminal(out, StreamChunk{Err: ErrCancelled})
					return
				}
			}
		}
	}()

	return out
}
