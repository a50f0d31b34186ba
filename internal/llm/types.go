// Package llm 多供应商 LLM 集成层
// 统一的 Complete / CompleteStream 契约 + 按线上协议划分的
// 三个 Adapter 家族（OpenAI 兼容 / Anthropic / Gemini），
// 由 Router 按供应商类型分发
package llm

import "context"

// Role 消息角色
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage 会话消息（不可变值，顺序由调用方保持）
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage token 用量统计
// 优先取供应商返回的数字，取不到时由上层估算
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// StreamChunk 流式响应的一个片段
// Err 非 nil 表示终止（错误或取消），之后通道关闭；
// Usage 只在最后一个片段上携带（部分供应商在流尾返回用量）
type StreamChunk struct {
	Text  string
	Usage *Usage
	Err   error
}

// CompletionRequest 一次补全请求
type CompletionRequest struct {
	Model       string        // 线上模型标识
	Messages    []ChatMessage // 完整会话历史
	Temperature *float64
	MaxTokens   int

	// StreamInternally 为 true 时 Complete 内部走流式传输
	// 并聚合全部片段后返回（更稳健的代码路径）
	StreamInternally bool

	// PDFData 原始文件负载，仅 Gemini 且模型具备 pdf_input
	// 能力时生效，其余 Adapter 忽略
	PDFData []byte
}

// CompletionResult 非流式补全结果
type CompletionResult struct {
	Text  string
	Usage Usage
}

// Adapter 单一线上协议家族的补全实现
type Adapter interface {
	// Complete 发送完整会话并返回完整回复
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)

	// CompleteStream 返回按到达顺序产出文本片段的通道。
	// 正常结束、错误、取消都以通道内的终止片段表达，
	// 永远不会同步失败。终止片段是通道上的最后一个元素，
	// 消费者必须读到通道关闭为止
	CompleteStream(ctx context.Context, req *CompletionRequest) <-chan StreamChunk
}

// CollectStream 聚合一条流的全部片段
// 返回已累积的文本（取消/出错时为部分内容）和末尾用量
func CollectStream(ch <-chan StreamChunk) (string, Usage, error) {
	var text string
	var usage Usage

	for chunk := range ch {
		if chunk.Usage != nil {
			usage = *chunk.Usage
		}
		if chunk.Err != nil {
			return text, usage, chunk.Err
		}
		text += chunk.Text
	}

	return text, usage, nil
}

// errorStream 构造只包含一个终止错误片段的流
// Router 解析失败时用它保持“流是失败的单位”契约
func errorStream(err error) <-chan StreamChunk {
	ch := make(chan StreamChunk, 1)
	ch <- StreamChunk{Err: err}
	close(ch)
	return ch
}
