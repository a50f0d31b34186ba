package docctx

import (
	"strings"
	"testing"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveStrategy_NoFullText(t *testing.T) {
	paper := &models.Paper{Abstract: "only abstract"}
	assert.Equal(t, StrategyFallback, ResolveStrategy(paper, 128000))
}

func TestResolveStrategy_Boundary(t *testing.T) {
	window := 1000

	// 恰好等于预算一半：仍然全文注入
	exact := &models.Paper{FullText: strings.Repeat("a", 500)}
	assert.Equal(t, StrategyFullText, ResolveStrategy(exact, window))

	// 超出一字符：段落匹配
	over := &models.Paper{FullText: strings.Repeat("a", 501)}
	assert.Equal(t, StrategySegment, ResolveStrategy(over, window))
}

func TestBuildSystemContext_FullText(t *testing.T) {
	paper := &models.Paper{
		Title:    "Test Paper",
		Abstract: "An abstract.",
		FullText: "Short full text.",
	}

	got := BuildSystemContext(paper, "anything", 128000)

	assert.Contains(t, got, "Test Paper")
	assert.Contains(t, got, "论文全文：\nShort full text.")
	// 全文注入不带摘要段
	assert.NotContains(t, got, "论文摘要")
}

func TestBuildSystemContext_Fallback(t *testing.T) {
	paper := &models.Paper{
		Title:    "Test Paper",
		Abstract: "An abstract.",
	}

	got := BuildSystemContext(paper, "anything", 128000)

	assert.Contains(t, got, "论文摘要：An abstract.")
	assert.NotContains(t, got, "论文全文")
}

// sections 组装一篇超出窗口预算的多段论文
func sections() string {
	paragraphs := []string{
		"Introduction: this paper studies transformer models.",
		"Related work on convolutional networks.",
		"Method: we apply attention pooling over tokens.",
		"Experiments on translation benchmarks.",
		"The attention mechanism is evaluated in ablation studies.",
		"Conclusion and future work on attention.",
		"Appendix with extra proofs.",
	}
	return strings.Join(paragraphs, "\n\n")
}

func TestSelectSegments_KeywordRanking(t *testing.T) {
	got := selectSegments(sections(), "attention mechanism")

	// 含查询词的段落被选中
	assert.Contains(t, got, "attention pooling")
	assert.Contains(t, got, "ablation studies")
	assert.Contains(t, got, "future work on attention")
	// 前 5 名由零分段落按原文顺序补足，稳定排序下
	// 排在后面的零分段落落选
	assert.Contains(t, got, "convolutional networks")
	assert.NotContains(t, got, "translation benchmarks")
	assert.NotContains(t, got, "Appendix")
}

func TestSelectSegments_DocumentOrderPreserved(t *testing.T) {
	got := selectSegments(sections(), "attention mechanism")

	// 输出按原文顺序而非得分顺序
	posMethod := strings.Index(got, "attention pooling")
	posAblation := strings.Index(got, "ablation studies")
	posConclusion := strings.Index(got, "future work")
	assert.True(t, posMethod < posAblation && posAblation < posConclusion,
		"segments must appear in document order: %q", got)
}

func TestSelectSegments_ShortTokensDropped(t *testing.T) {
	// 所有查询词都短于 3 字符 → 无有效查询词 → 开头 3 段概览
	got := selectSegments(sections(), "a of is")

	paragraphs := splitParagraphs(sections())
	want := strings.Join(paragraphs[:3], "\n\n")
	assert.Equal(t, want, got)
}

func TestSelectSegments_NoMatchFallsBackToOverview(t *testing.T) {
	got := selectSegments(sections(), "quantum cryptography")

	paragraphs := splitParagraphs(sections())
	want := strings.Join(paragraphs[:3], "\n\n")
	assert.Equal(t, want, got)
}

func TestSelectSegments_CaseInsensitive(t *testing.T) {
	got := selectSegments(sections(), "ATTENTION")
	assert.Contains(t, got, "attention pooling")
}

func TestSelectSegments_FewerParagraphsThanOverview(t *testing.T) {
	text := "only one paragraph here"
	got := selectSegments(text, "xx yy")
	assert.Equal(t, "only one paragraph here", got)
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("first\n\n\n\n  second  \n\n\t\n\nthird")
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestQueryTokens(t *testing.T) {
	assert.Equal(t, []string{"attention", "transformer"}, queryTokens("Attention in Transformer"))
	assert.Empty(t, queryTokens("a is of"))
	assert.Empty(t, queryTokens(""))
}
