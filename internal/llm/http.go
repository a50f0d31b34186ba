package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// defaultTimeout 上游请求超时
// 长回复 + 网络抖动的容忍度，与网关转发场景一致
const defaultTimeout = 300 * time.Second

// newHTTPClient 创建带默认超时的 HTTP 客户端
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// buildJSONRequest 构建 JSON POST 请求
// URL 解析失败在任何网络调用之前返回 ErrInvalidURL
func buildJSONRequest(ctx context.Context, rawURL string, payload interface{}) (*http.Request, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// checkStatus 非 2xx 响应转换为 RequestError
// 响应体读取后截断保留，用于诊断展示
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	preview, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return NewRequestError(resp.StatusCode, string(preview))
}

// terminalError 将传输错误映射为流的终止错误
// 主动取消统一表达为 ErrCancelled，与失败区分
func terminalError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled || errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return err
}

// sendChunk 向消费者投递中间片段
// 调用方已取消时返回 false，生产侧应停止产出并投递终止片段
func sendChunk(ctx context.Context, out chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// sendTerminal 投递终止片段
// 消费者按约定一直读到通道关闭，阻塞发送不会泄漏；
// 终止片段永远是通道上的最后一个元素
func sendTerminal(out chan<- StreamChunk, chunk StreamChunk) {
	out <- chunk
}
