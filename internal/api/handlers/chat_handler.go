package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/chat"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/llm"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
)

// ChatHandler 对话 HTTP 处理器
type ChatHandler struct {
	service *chat.Service
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Ask 非流式对话
// @Summary 发起一轮非流式对话
// @Tags chat
// @Accept json
// @Produce json
// @Success 200 {object} chat.TurnResult
// @Router /api/chat [post]
func (h *ChatHandler) Ask(c *gin.Context) {
	var req chat.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request parameters",
				Details: err.Error(),
			},
		})
		return
	}

	result, err := h.service.Ask(c.Request.Context(), &req)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// streamEvent 推送给前端的 SSE 数据帧
type streamEvent struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Delta          string `json:"delta,omitempty"`
	Done           bool   `json:"done,omitempty"`
	Error          string `json:"error,omitempty"`
	InputTokens    int    `json:"input_tokens,omitempty"`
	OutputTokens   int    `json:"output_tokens,omitempty"`
}

// AskStream 流式对话，SSE 推送增量文本
// 片段到达顺序即推送顺序；终止帧携带 done 或 error
// @Summary 发起一轮流式对话
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Router /api/chat/stream [post]
func (h *ChatHandler) AskStream(c *gin.Context) {
	var req chat.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request parameters",
				Details: err.Error(),
			},
		})
		return
	}

	stream, conversationID, err := h.service.AskStream(c.Request.Context(), &req)
	if err != nil {
		writeChatError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Streaming not supported",
			},
		})
		return
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// 首帧带会话 ID，前端据此续聊
	writeSSE(c, flusher, streamEvent{ConversationID: conversationID})

	for chunk := range stream {
		if chunk.Err != nil {
			if errors.Is(chunk.Err, llm.ErrCancelled) {
				writeSSE(c, flusher, streamEvent{Done: true})
			} else {
				writeSSE(c, flusher, streamEvent{Error: llm.HumanMessage(chunk.Err)})
			}
			return
		}

		event := streamEvent{Delta: chunk.Text}
		if chunk.Usage != nil {
			event.InputTokens = chunk.Usage.InputTokens
			event.OutputTokens = chunk.Usage.OutputTokens
		}
		if event.Delta != "" || chunk.Usage != nil {
			writeSSE(c, flusher, event)
		}
	}

	writeSSE(c, flusher, streamEvent{Done: true})
}

// writeSSE 输出一条 SSE 数据帧并立即刷新
func writeSSE(c *gin.Context, flusher http.Flusher, event streamEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	flusher.Flush()
}

// writeChatError 将编排层错误映射为 HTTP 响应
func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrPaperNotFound):
		c.JSON(http.StatusNotFound, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Paper not found",
			},
		})
	case errors.Is(err, chat.ErrNotConfigured):
		c.JSON(http.StatusConflict, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "NOT_CONFIGURED",
				Message: "请先在设置中配置可用的模型",
			},
		})
	default:
		c.JSON(http.StatusBadGateway, provider.ErrorResponse{
			Error: provider.ErrorDetail{
				Code:    "UPSTREAM_ERROR",
				Message: llm.HumanMessage(err),
			},
		})
	}
}
