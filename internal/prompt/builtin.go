package prompt

import (
	"log"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/gorm"
)

// builtinTemplates 首次运行时播种的内置模板
// 内置模板不可删除（is_built_in），但允许用户改动内容
var builtinTemplates = []models.PromptTemplate{
	{
		Name:         "全局系统提示",
		Scene:        models.SceneGlobalSystem,
		SystemPrompt: "你是一位严谨的学术论文阅读助手。回答要准确、简洁，引用论文内容时注明出处段落。不确定的内容明确说明不确定。",
		Temperature:  0.7,
		MaxTokens:    4096,
		SortOrder:    0,
	},
	{
		Name:               "论文洞察",
		Scene:              models.SceneInsightGeneration,
		SystemPrompt:       "你是一位资深研究员，擅长快速抓住论文的核心贡献与局限。",
		UserPromptTemplate: "请阅读以下论文并给出核心洞察（贡献、方法、局限、后续方向）：\n\n标题：{{title}}\n\n摘要：{{abstract}}",
		Temperature:        0.7,
		MaxTokens:          4096,
		SortOrder:          1,
	},
	{
		Name:               "创新点提取",
		Scene:              models.SceneInnovationExtract,
		SystemPrompt:       "你是一位论文评审专家，负责客观提取论文声称的创新点。",
		UserPromptTemplate: "请从以下论文中逐条列出创新点，并标注每条的依据：\n\n标题：{{title}}\n\n摘要：{{abstract}}\n\n{{full_text}}",
		Temperature:        0.3,
		MaxTokens:          4096,
		SortOrder:          2,
	},
	{
		Name:               "公式解析",
		Scene:              models.SceneFormulaAnalysis,
		SystemPrompt:       "你是一位数学功底扎实的助教，擅长把公式拆解为直观的解释。",
		UserPromptTemplate: "请解析下面选中的公式，说明每个符号的含义和公式的直观意义：\n\n{{selected_text}}",
		Temperature:        0.3,
		MaxTokens:          2048,
		SortOrder:          3,
	},
	{
		Name:         "论文对话",
		Scene:        models.ScenePaperChat,
		SystemPrompt: "你是一位论文阅读助手，基于提供的论文内容回答问题。论文中没有的信息不要编造。",
		Temperature:  0.7,
		MaxTokens:    4096,
		SortOrder:    4,
	},
	{
		Name:               "翻译",
		Scene:              models.SceneTranslation,
		SystemPrompt:       "你是一位专业的学术翻译，保持术语准确、语句通顺。",
		UserPromptTemplate: "请将以下内容翻译成中文：\n\n{{selected_text}}",
		Temperature:        0.3,
		MaxTokens:          4096,
		SortOrder:          5,
	},
	{
		Name:               "摘要总结",
		Scene:              models.SceneSummary,
		SystemPrompt:       "你是一位学术写作助手，擅长生成结构化的论文总结。",
		UserPromptTemplate: "请总结以下论文，输出：研究问题、方法、主要结果、结论：\n\n标题：{{title}}\n\n摘要：{{abstract}}\n\n{{full_text}}",
		Temperature:        0.5,
		MaxTokens:          4096,
		SortOrder:          6,
	},
}

// SeedBuiltinTemplates 播种内置模板
// 按场景判重，已存在内置模板的场景跳过，可安全重复执行
func SeedBuiltinTemplates(db *gorm.DB) error {
	seeded := 0
	for _, tpl := range builtinTemplates {
		var count int64
		err := db.Model(&models.PromptTemplate{}).
			Where("scene = ? AND is_built_in = ?", tpl.Scene, true).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		record := tpl
		record.IsBuiltIn = true
		record.ResponseLanguage = "中文"
		record.OutputFormat = models.OutputMarkdown
		if err := db.Create(&record).Error; err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		log.Printf("🌱 已播种 %d 个内置提示词模板", seeded)
	}
	return nil
}
