package prompt

import (
	"testing"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
)

func fullPaper() *models.Paper {
	return &models.Paper{
		ArxivID:    "2401.12345",
		Title:      "Attention Is All You Need",
		Abstract:   "We propose a new architecture.",
		Authors:    "Vaswani, Shazeer",
		Categories: "cs.CL, cs.LG",
		FullText:   "1 Introduction ...",
	}
}

func TestResolveVariables_AllPlaceholders(t *testing.T) {
	template := "标题: {{title}}\n摘要: {{abstract}}\n作者: {{authors}}\n分类: {{categories}}\n全文: {{full_text}}\n选中: {{selected_text}}"

	got := ResolveVariables(template, fullPaper(), "the attention mechanism")
	want := "标题: Attention Is All You Need\n摘要: We propose a new architecture.\n作者: Vaswani, Shazeer\n分类: cs.CL, cs.LG\n全文: 1 Introduction ...\n选中: the attention mechanism"

	if got != want {
		t.Errorf("ResolveVariables() = %q, want %q", got, want)
	}
}

func TestResolveVariables_NoPlaceholders_Unchanged(t *testing.T) {
	template := "请用中文回答下面的问题。"

	got := ResolveVariables(template, fullPaper(), "selection")
	if got != template {
		t.Errorf("template without placeholders should pass through unchanged, got %q", got)
	}
}

func TestResolveVariables_EmptyFieldsUseFallbacks(t *testing.T) {
	paper := &models.Paper{ArxivID: "2401.12345"}

	got := ResolveVariables("{{title}}|{{abstract}}|{{authors}}|{{categories}}|{{full_text}}", paper, "")
	want := "(标题不可用)|(摘要不可用)|(作者信息不可用)|(分类信息不可用)|(全文不可用)"

	if got != want {
		t.Errorf("ResolveVariables() = %q, want %q", got, want)
	}
}

func TestResolveVariables_WhitespaceOnlyFieldIsEmpty(t *testing.T) {
	paper := fullPaper()
	paper.Title = "   \n\t  "

	got := ResolveVariables("{{title}}", paper, "")
	if got != "(标题不可用)" {
		t.Errorf("whitespace-only title should use fallback, got %q", got)
	}
}

func TestResolveVariables_SelectedTextEmptyIsSilent(t *testing.T) {
	// selected_text 没有占位文案，缺失时替换为空串
	got := ResolveVariables("选中内容: [{{selected_text}}]", fullPaper(), "")
	if got != "选中内容: []" {
		t.Errorf("empty selected_text should become empty string, got %q", got)
	}
}

func TestResolveVariables_RepeatedPlaceholder(t *testing.T) {
	got := ResolveVariables("{{title}} / {{title}}", fullPaper(), "")
	if got != "Attention Is All You Need / Attention Is All You Need" {
		t.Errorf("repeated placeholder should be replaced everywhere, got %q", got)
	}
}

func TestResolveVariables_UnknownPlaceholderUntouched(t *testing.T) {
	got := ResolveVariables("{{title}} {{unknown_var}}", fullPaper(), "")
	if got != "Attention Is All You Need {{unknown_var}}" {
		t.Errorf("unknown placeholder should stay as-is, got %q", got)
	}
}
