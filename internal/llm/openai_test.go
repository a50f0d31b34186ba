package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseChunk 构造一条 OpenAI 流式事件
func sseChunk(content string) string {
	payload := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"delta": map[string]string{"content": content}},
		},
	}
	data, _ := json.Marshal(payload)
	return fmt.Sprintf("data: %s\n\n", data)
}

func TestOpenAIAdapter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openAIChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "你好！"}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 3},
		})
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL+"/v1", "sk-test", nil)
	result, err := adapter.Complete(context.Background(), &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "你好！", result.Text)
	assert.Equal(t, 12, result.Usage.InputTokens)
	assert.Equal(t, 3, result.Usage.OutputTokens)
}

func TestOpenAIAdapter_Complete_CustomHeadersOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer custom-token", r.Header.Get("Authorization"))
		assert.Equal(t, "on", r.Header.Get("X-Feature"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	headers := map[string]string{
		"Authorization": "Bearer custom-token",
		"X-Feature":     "on",
	}
	adapter := NewOpenAIAdapter(server.URL, "sk-ignored", headers)
	result, err := adapter.Complete(context.Background(), &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
}

func TestOpenAIAdapter_Complete_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL, "bad-key", nil)
	_, err := adapter.Complete(context.Background(), &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "invalid api key")
}

func TestOpenAIAdapter_Complete_InvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL, "sk-test", nil)
	_, err := adapter.Complete(context.Background(), &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})

	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestOpenAIAdapter_Complete_InvalidURL(t *testing.T) {
	adapter := NewOpenAIAdapter("://not-a-url", "sk-test", nil)
	_, err := adapter.Complete(context.Background(), &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})

	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestOpenAIAdapter_CompleteStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, sseChunk("Hello"))
		flusher.Flush()
		fmt.Fprint(w, sseChunk(", "))
		flusher.Flush()
		fmt.Fprint(w, sseChunk("world"))
		flusher.Flush()
		fmt.Fprint(w, "data: {\"choices\":[],\"usage\":{\"prompt_tokens\":8,\"completion_tokens\":3}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL, "sk-test", nil)
	ch := adapter.CompleteStream(context.Background(), &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})

	var texts []string
	var finalUsage *Usage
	for chunk := range ch {
		require.NoError(t, chunk.Err)
		if chunk.Text != "" {
			texts = append(texts, chunk.Text)
		}
		if chunk.Usage != nil {
			finalUsage = chunk.Usage
		}
	}

	// 片段顺序与线上到达顺序一致
	assert.Equal(t, []string{"Hello", ", ", "world"}, texts)
	require.NotNil(t, finalUsage)
	assert.Equal(t, 8, finalUsage.InputTokens)
	assert.Equal(t, 3, finalUsage.OutputTokens)
}

func TestOpenAIAdapter_CompleteStream_SkipsMalformedChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("A"))
		fmt.Fprint(w, "data: {not json}\n\n")
		fmt.Fprint(w, sseChunk("B"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL, "sk-test", nil)
	text, _, err := CollectStream(adapter.CompleteStream(context.Background(), &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	}))

	require.NoError(t, err)
	assert.Equal(t, "AB", text)
}

func TestOpenAIAdapter_CompleteStream_EOFWithoutDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("partial"))
		// 不发 [DONE]，直接断流
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL, "sk-test", nil)
	text, _, err := CollectStream(adapter.CompleteStream(context.Background(), &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	}))

	require.NoError(t, err)
	assert.Equal(t, "partial", text)
}

// 内部流式聚合与流式路径产出相同的完整文本
func TestOpenAIAdapter_StreamInternally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		// StreamInternally 必须走流式传输
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("分段"))
		fmt.Fprint(w, sseChunk("聚合"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL, "sk-test", nil)
	result, err := adapter.Complete(context.Background(), &CompletionRequest{
		Model:            "gpt-4o",
		Messages:         []ChatMessage{{Role: RoleUser, Content: "hi"}},
		StreamInternally: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "分段聚合", result.Text)
}

func TestOpenAIAdapter_CompleteStream_Cancellation(t *testing.T) {
	blocker := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, sseChunk("前半"))
		flusher.Flush()
		<-blocker // 挂起直到测试结束
	}))
	defer server.Close()
	defer close(blocker)

	ctx, cancel := context.WithCancel(context.Background())
	adapter := NewOpenAIAdapter(server.URL, "sk-test", nil)
	ch := adapter.CompleteStream(ctx, &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})

	// 收到第一个片段后取消
	first := <-ch
	require.NoError(t, first.Err)
	assert.Equal(t, "前半", first.Text)
	cancel()

	var terminal error
	deadline := time.After(5 * time.Second)
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				assert.True(t, errors.Is(terminal, ErrCancelled), "取消后终止片段应为 ErrCancelled，got %v", terminal)
				return
			}
			if chunk.Err != nil {
				terminal = chunk.Err
			}
		case <-deadline:
			t.Fatal("stream did not terminate after cancellation")
		}
	}
}
