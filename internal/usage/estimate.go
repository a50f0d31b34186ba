package usage

import (
	"unicode/utf8"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/llm"
)

// EstimateTokens 估算文本的 token 数量
// 经验公式：中文约 1.5 字符 = 1 token，其他约 3 字符 = 1 token。
// 仅在供应商未返回用量数字时作为兜底
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	charCount := utf8.RuneCountInString(text)
	chineseCount := 0
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fa5 {
			chineseCount++
		}
	}

	englishChars := charCount - chineseCount
	tokens := (chineseCount*2 + englishChars) / 3

	// 有内容时至少算 1 个 token
	if tokens == 0 && charCount > 0 {
		return 1
	}

	return tokens
}

// EstimateMessagesTokens 估算一组消息的输入 token 总量
func EstimateMessagesTokens(messages []llm.ChatMessage) int {
	total := 0
	for _, msg := range messages {
		total += EstimateTokens(msg.Content)
	}
	return total
}
