package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRouter 带内存凭证库的路由器
func setupRouter(t *testing.T, creds map[string]string) *Router {
	store := secret.NewMemoryStore()
	for ref, key := range creds {
		if err := store.Save(ref, key); err != nil {
			t.Fatalf("save credential failed: %v", err)
		}
	}
	return NewRouter(store)
}

func TestRouter_ResolveAdapter_ByProviderType(t *testing.T) {
	router := setupRouter(t, map[string]string{"cred-1": "sk-test"})

	cases := []struct {
		providerType models.ProviderType
		wantType     interface{}
	}{
		{models.ProviderOpenAI, &OpenAIAdapter{}},
		{models.ProviderDeepSeek, &OpenAIAdapter{}},
		{models.ProviderOpenRouter, &OpenAIAdapter{}},
		{models.ProviderZhipu, &OpenAIAdapter{}},
		{models.ProviderDashScope, &OpenAIAdapter{}},
		{models.ProviderMiniMax, &OpenAIAdapter{}},
		{models.ProviderCustomOpenAI, &OpenAIAdapter{}},
		{models.ProviderAnthropic, &AnthropicAdapter{}},
		{models.ProviderGoogle, &GeminiAdapter{}},
	}

	for _, tc := range cases {
		adapter, err := router.ResolveAdapter(&models.Provider{
			Type:          tc.providerType,
			CredentialRef: "cred-1",
		})
		require.NoError(t, err, "type %s", tc.providerType)
		assert.IsType(t, tc.wantType, adapter, "type %s", tc.providerType)
	}
}

func TestRouter_ResolveAdapter_UnknownType(t *testing.T) {
	router := setupRouter(t, nil)

	_, err := router.ResolveAdapter(&models.Provider{Type: "no-such-vendor"})
	assert.ErrorIs(t, err, ErrUnknownProviderType)
}

func TestRouter_ResolveAdapter_DefaultBaseURL(t *testing.T) {
	router := setupRouter(t, map[string]string{"cred-1": "sk-test"})

	adapter, err := router.ResolveAdapter(&models.Provider{
		Type:          models.ProviderOpenAI,
		CredentialRef: "cred-1",
	})
	require.NoError(t, err)

	openai, ok := adapter.(*OpenAIAdapter)
	require.True(t, ok)
	assert.Equal(t, "https://api.openai.com/v1", openai.baseURL)
}

func TestRouter_ResolveAdapter_MissingCredentialProceeds(t *testing.T) {
	// 凭证缺失不是解析错误：空字符串继续，401 由上游裁决
	router := setupRouter(t, nil)

	adapter, err := router.ResolveAdapter(&models.Provider{
		Type:          models.ProviderOpenAI,
		CredentialRef: "cred-unset",
	})
	require.NoError(t, err)

	openai, ok := adapter.(*OpenAIAdapter)
	require.True(t, ok)
	assert.Empty(t, openai.apiKey)
}

func TestRouter_ResolveAdapter_OpenRouterAttribution(t *testing.T) {
	router := setupRouter(t, map[string]string{"cred-1": "sk-or"})

	adapter, err := router.ResolveAdapter(&models.Provider{
		Type:          models.ProviderOpenRouter,
		CredentialRef: "cred-1",
	})
	require.NoError(t, err)

	openai := adapter.(*OpenAIAdapter)
	assert.Equal(t, openRouterRefererValue, openai.headers[openRouterRefererHeader])
	assert.Equal(t, openRouterTitleValue, openai.headers[openRouterTitleHeader])
}

func TestRouter_ResolveAdapter_OpenRouterAttributionNotOverridden(t *testing.T) {
	router := setupRouter(t, map[string]string{"cred-1": "sk-or"})

	custom, _ := json.Marshal(map[string]string{"HTTP-Referer": "https://my-site.example"})
	adapter, err := router.ResolveAdapter(&models.Provider{
		Type:          models.ProviderOpenRouter,
		CredentialRef: "cred-1",
		CustomHeaders: string(custom),
	})
	require.NoError(t, err)

	openai := adapter.(*OpenAIAdapter)
	// 已有的归因头保留，缺失的补上
	assert.Equal(t, "https://my-site.example", openai.headers[openRouterRefererHeader])
	assert.Equal(t, openRouterTitleValue, openai.headers[openRouterTitleHeader])
}

func TestRouter_CompleteStream_ResolveFailureIsTerminalChunk(t *testing.T) {
	router := setupRouter(t, nil)

	ch := router.CompleteStream(context.Background(), &models.Provider{Type: "no-such-vendor"}, &CompletionRequest{
		Model:    "whatever",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})

	chunk, ok := <-ch
	require.True(t, ok)
	assert.ErrorIs(t, chunk.Err, ErrUnknownProviderType)

	_, open := <-ch
	assert.False(t, open, "终止片段后通道应关闭")
}

func TestRouter_Complete_FreshCredentialPerCall(t *testing.T) {
	var seenKeys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenKeys = append(seenKeys, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	store := secret.NewMemoryStore()
	require.NoError(t, store.Save("cred-1", "key-before"))
	router := NewRouter(store)

	prov := &models.Provider{
		Type:          models.ProviderOpenAI,
		BaseURL:       server.URL,
		CredentialRef: "cred-1",
	}
	req := &CompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	}

	_, err := router.Complete(context.Background(), prov, req)
	require.NoError(t, err)

	// 轮换凭证后下一次调用立刻生效
	require.NoError(t, store.Save("cred-1", "key-after"))
	_, err = router.Complete(context.Background(), prov, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer key-before", "Bearer key-after"}, seenKeys)
}

func TestRouter_TestConnectivity_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Hello"}},
			},
		})
	}))
	defer server.Close()

	router := setupRouter(t, map[string]string{"cred-1": "sk-test"})
	result := router.TestConnectivity(context.Background(), &models.Provider{
		Name:          "Test",
		Type:          models.ProviderOpenAI,
		BaseURL:       server.URL,
		CredentialRef: "cred-1",
	}, "gpt-4o")

	assert.True(t, result.Success)
	assert.GreaterOrEqual(t, result.LatencyMs, int64(0))
	assert.Empty(t, result.Error)
}

func TestRouter_TestConnectivity_NeverThrows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	router := setupRouter(t, map[string]string{"cred-1": "sk-bad"})
	result := router.TestConnectivity(context.Background(), &models.Provider{
		Name:          "Test",
		Type:          models.ProviderOpenAI,
		BaseURL:       server.URL,
		CredentialRef: "cred-1",
	}, "gpt-4o")

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	// 失败同样测量耗时
	assert.GreaterOrEqual(t, result.LatencyMs, int64(0))
}

func TestParseCustomHeaders(t *testing.T) {
	assert.Empty(t, parseCustomHeaders(""))
	assert.Empty(t, parseCustomHeaders("{invalid"))
	assert.Equal(t, map[string]string{"X-App": "demo"}, parseCustomHeaders(`{"X-App":"demo"}`))
}
