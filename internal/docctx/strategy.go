// Package docctx 论文内容的上下文注入策略
// 根据内容长度与模型上下文窗口预算决定全文注入 / 段落匹配 /
// 直接文件 / 纯文本兜底，并生成接地的系统消息
package docctx

import (
	"sort"
	"strings"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
)

// Strategy 上下文注入策略
type Strategy string

const (
	// StrategyFullText 全文注入：内容能放进窗口预算的一半
	StrategyFullText Strategy = "full_text_injection"
	// StrategySegment 段落匹配：按查询关键词挑选相关段落
	StrategySegment Strategy = "segment_matching"
	// StrategyPDFDirect 直接文件注入
	// 仅由感知模型能力的调用方显式选择，构建输出目前与
	// 兜底一致，是一个尚未完成的扩展点
	StrategyPDFDirect Strategy = "pdf_direct"
	// StrategyFallback 纯文本兜底：只有摘要可用
	StrategyFallback Strategy = "plain_text_fallback"
)

// baseInstruction 接地系统消息的固定角色设定前缀
const baseInstruction = "你是一位论文阅读助手。请仅基于下面提供的论文内容回答用户的问题，论文中没有的信息不要编造。\n\n"

// 段落匹配参数
const (
	topSegments      = 5 // 选取得分最高的段落数
	overviewSegments = 3 // 无有效查询词时返回的开头段落数
	minTokenLength   = 3 // 查询词的最小长度，更短的词被丢弃
)

// ResolveStrategy 为论文选择上下文策略
// 全函数：任何输入都会返回四种策略之一。
// pdf_direct 不在本函数的默认路径上，只能由感知模型能力的
// 调用方显式选择
func ResolveStrategy(paper *models.Paper, contextWindowChars int) Strategy {
	if !paper.HasFullText() {
		return StrategyFallback
	}
	// 边界取“能放下”一侧：长度恰好等于预算一半时仍然全文注入
	if len(paper.FullText) <= contextWindowChars/2 {
		return StrategyFullText
	}
	return StrategySegment
}

// BuildSystemContext 构建接地系统消息
// 固定的角色设定前缀 + 按策略选出的论文内容
func BuildSystemContext(paper *models.Paper, userQuery string, contextWindowChars int) string {
	var content strings.Builder
	content.WriteString(baseInstruction)
	content.WriteString("论文标题：" + paper.Title + "\n\n")

	switch ResolveStrategy(paper, contextWindowChars) {
	case StrategyFullText:
		content.WriteString("论文全文：\n" + paper.FullText)
	case StrategySegment:
		content.WriteString("论文摘要：" + paper.Abstract + "\n\n")
		content.WriteString("相关段落：\n" + selectSegments(paper.FullText, userQuery))
	default:
		// pdf_direct 的构建行为目前与兜底一致
		content.WriteString("论文摘要：" + paper.Abstract)
	}

	return content.String()
}

// selectSegments 关键词重叠的段落选取
// 每个段落的得分是“出现在段落里的查询词个数”（同一词出现
// 多次只计一次，大小写不敏感的子串包含）；取前 5 名后按原文
// 顺序重排输出。没有有效查询词或全部段落得 0 分时，退回
// 开头 3 段作为概览
func selectSegments(fullText, userQuery string) string {
	paragraphs := splitParagraphs(fullText)
	if len(paragraphs) == 0 {
		return ""
	}

	tokens := queryTokens(userQuery)
	if len(tokens) == 0 {
		return joinFirst(paragraphs, overviewSegments)
	}

	type scored struct {
		index int
		score int
	}

	ranking := make([]scored, 0, len(paragraphs))
	for i, para := range paragraphs {
		lower := strings.ToLower(para)
		score := 0
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				score++
			}
		}
		ranking = append(ranking, scored{index: i, score: score})
	}

	// 得分降序，同分按原文顺序
	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].score > ranking[b].score
	})

	if ranking[0].score == 0 {
		// 所有段落都不含任何查询词
		return joinFirst(paragraphs, overviewSegments)
	}

	top := ranking
	if len(top) > topSegments {
		top = top[:topSegments]
	}

	// 按原文顺序重排输出，而非得分顺序
	indices := make([]int, 0, len(top))
	for _, s := range top {
		indices = append(indices, s.index)
	}
	sort.Ints(indices)

	selected := make([]string, 0, len(indices))
	for _, idx := range indices {
		selected = append(selected, paragraphs[idx])
	}
	return strings.Join(selected, "\n\n")
}

// splitParagraphs 以空行为界切分段落，丢弃修剪后为空的段落
func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// queryTokens 查询分词：小写、按空白切分、丢弃过短的词
func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// joinFirst 取前 n 个段落拼接
func joinFirst(paragraphs []string, n int) string {
	if len(paragraphs) < n {
		n = len(paragraphs)
	}
	return strings.Join(paragraphs[:n], "\n\n")
}
