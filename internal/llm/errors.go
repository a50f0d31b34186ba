package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL URL 解析失败，在任何网络请求之前检出，不重试
	ErrInvalidURL = errors.New("invalid base URL")
	// ErrInvalidResponse 2xx 但响应体不符合预期结构（协议不匹配）
	ErrInvalidResponse = errors.New("invalid response body")
	// ErrMissingCredential 凭证引用完全无法解析
	// 注意：凭证“错误”不会触发此错误，只会表现为上游 401
	ErrMissingCredential = errors.New("missing credential")
	// ErrCancelled 调用方主动取消，是与失败不同的终止状态
	ErrCancelled = errors.New("request cancelled")
	// ErrUnknownProviderType Router 无法为供应商类型找到 Adapter
	ErrUnknownProviderType = errors.New("unknown provider type")
)

// RequestError 非 2xx HTTP 结果
type RequestError struct {
	StatusCode int
	Body       string // 响应体截断预览，用于诊断
}

// Error 实现 error 接口
func (e *RequestError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d", e.StatusCode)
}

// NewRequestError 创建 RequestError，body 截断到 200 字符
func NewRequestError(statusCode int, body string) *RequestError {
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return &RequestError{StatusCode: statusCode, Body: body}
}

// HumanMessage 将错误翻译成面向用户的简短提示
// 401/403 单独指明是凭证问题，其余按错误类别给出指引
func HumanMessage(err error) string {
	if err == nil {
		return ""
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.StatusCode == 401 || reqErr.StatusCode == 403 {
			return "API Key 无效或已过期，请在设置中检查凭证"
		}
		return fmt.Sprintf("服务返回错误 (HTTP %d)，请稍后重试", reqErr.StatusCode)
	}

	switch {
	case errors.Is(err, ErrInvalidURL):
		return "服务地址格式不正确，请检查 Base URL"
	case errors.Is(err, ErrInvalidResponse):
		return "服务返回了无法解析的内容，请确认供应商类型配置正确"
	case errors.Is(err, ErrMissingCredential), errors.Is(err, ErrUnknownProviderType):
		return "尚未配置可用的模型，请先在设置中添加供应商和模型"
	case errors.Is(err, ErrCancelled):
		return "已停止生成"
	default:
		return "请求失败: " + err.Error()
	}
}
