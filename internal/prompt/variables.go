// Package prompt 提示词模板与变量替换
package prompt

import (
	"strings"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
)

// 字段为空时的占位文案，每个字段有独立提示
// selected_text 刻意没有占位符：选中文本是可选上下文，
// 缺失时静默替换为空串
const (
	fallbackTitle      = "(标题不可用)"
	fallbackAbstract   = "(摘要不可用)"
	fallbackAuthors    = "(作者信息不可用)"
	fallbackCategories = "(分类信息不可用)"
	fallbackFullText   = "(全文不可用)"
)

// ResolveVariables 解析模板中的变量占位符
// 对六个固定占位符做字面子串替换（非正则模板引擎），
// 同一占位符出现多次时全部替换；未识别的 {{...}} 原样保留
func ResolveVariables(template string, paper *models.Paper, selectedText string) string {
	result := template

	result = strings.ReplaceAll(result, "{{title}}", fieldOrFallback(paper.Title, fallbackTitle))
	result = strings.ReplaceAll(result, "{{abstract}}", fieldOrFallback(paper.Abstract, fallbackAbstract))
	result = strings.ReplaceAll(result, "{{authors}}", fieldOrFallback(paper.Authors, fallbackAuthors))
	result = strings.ReplaceAll(result, "{{categories}}", fieldOrFallback(paper.Categories, fallbackCategories))
	result = strings.ReplaceAll(result, "{{full_text}}", fieldOrFallback(paper.FullText, fallbackFullText))
	result = strings.ReplaceAll(result, "{{selected_text}}", strings.TrimSpace(selectedText))

	return result
}

// fieldOrFallback 去除首尾空白，空字段替换为占位文案
func fieldOrFallback(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
