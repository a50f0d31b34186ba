package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiAdapter_BuildPayload(t *testing.T) {
	adapter := NewGeminiAdapter("https://generativelanguage.googleapis.com/v1beta", "key", nil)

	payload := adapter.buildPayload(&CompletionRequest{
		Model: "gemini-2.0-flash",
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: "你是论文助手"},
			{Role: RoleUser, Content: "这篇论文讲什么？"},
			{Role: RoleAssistant, Content: "这篇论文研究……"},
			{Role: RoleUser, Content: "继续"},
		},
	})

	require.NotNil(t, payload.SystemInstruction)
	assert.Equal(t, "你是论文助手", payload.SystemInstruction.Parts[0].Text)
	require.Len(t, payload.Contents, 3)
	assert.Equal(t, "user", payload.Contents[0].Role)
	// assistant 映射为 model
	assert.Equal(t, "model", payload.Contents[1].Role)
	assert.Equal(t, "user", payload.Contents[2].Role)
}

func TestGeminiAdapter_BuildPayload_PDF(t *testing.T) {
	adapter := NewGeminiAdapter("https://generativelanguage.googleapis.com/v1beta", "key", nil)
	raw := []byte("%PDF-1.4 fake")

	payload := adapter.buildPayload(&CompletionRequest{
		Model:    "gemini-2.0-flash",
		Messages: []ChatMessage{{Role: RoleUser, Content: "读这份 PDF"}},
		PDFData:  raw,
	})

	require.Len(t, payload.Contents, 1)
	parts := payload.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "application/pdf", parts[1].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), parts[1].InlineData.Data)
}

func TestGeminiAdapter_Endpoint(t *testing.T) {
	adapter := NewGeminiAdapter("https://generativelanguage.googleapis.com/v1beta/", "key", nil)

	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent",
		adapter.endpoint("gemini-2.0-flash", false))
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:streamGenerateContent?alt=sse",
		adapter.endpoint("gemini-2.0-flash", true))
}

func TestGeminiAdapter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "这篇论文提出了"}, {"text": "一种新方法"}},
				}},
			},
			"usageMetadata": map[string]int{"promptTokenCount": 30, "candidatesTokenCount": 10},
		})
	}))
	defer server.Close()

	adapter := NewGeminiAdapter(server.URL, "test-key", nil)
	result, err := adapter.Complete(context.Background(), &CompletionRequest{
		Model:    "gemini-2.0-flash",
		Messages: []ChatMessage{{Role: RoleUser, Content: "总结"}},
	})

	require.NoError(t, err)
	// 多个 part 的文本拼接
	assert.Equal(t, "这篇论文提出了一种新方法", result.Text)
	assert.Equal(t, 30, result.Usage.InputTokens)
	assert.Equal(t, 10, result.Usage.OutputTokens)
}

func TestGeminiAdapter_CompleteStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"candidates":[{"content":{"parts":[{"text":"前半"}]}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"candidates":[{"content":{"parts":[{"text":"后半"}]}}],"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":2}}`+"\n\n")
	}))
	defer server.Close()

	adapter := NewGeminiAdapter(server.URL, "test-key", nil)
	text, usage, err := CollectStream(adapter.CompleteStream(context.Background(), &CompletionRequest{
		Model:    "gemini-2.0-flash",
		Messages: []ChatMessage{{Role: RoleUser, Content: "总结"}},
	}))

	require.NoError(t, err)
	assert.Equal(t, "前半后半", text)
	assert.Equal(t, 5, usage.InputTokens)
	assert.Equal(t, 2, usage.OutputTokens)
}

func TestGeminiAdapter_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	adapter := NewGeminiAdapter(server.URL, "test-key", nil)
	_, err := adapter.Complete(context.Background(), &CompletionRequest{
		Model:    "gemini-2.0-flash",
		Messages: []ChatMessage{{Role: RoleUser, Content: "总结"}},
	})

	assert.ErrorIs(t, err, ErrInvalidResponse)
}
