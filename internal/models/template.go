package models

import (
	"time"

	"gorm.io/gorm"
)

// Scene 使用场景
// 作为模型分配策略的键，每个场景可以保存独立的默认模型
type Scene string

const (
	SceneGlobalSystem      Scene = "global_system"
	SceneInsightGeneration Scene = "insight_generation"
	SceneInnovationExtract Scene = "innovation_extract"
	SceneFormulaAnalysis   Scene = "formula_analysis"
	ScenePaperChat         Scene = "paper_chat"
	SceneTranslation       Scene = "translation"
	SceneSummary           Scene = "summary"
	SceneCustom            Scene = "custom"
)

// AllScenes 所有内置场景（不含 custom）
func AllScenes() []Scene {
	return []Scene{
		SceneGlobalSystem,
		SceneInsightGeneration,
		SceneInnovationExtract,
		SceneFormulaAnalysis,
		ScenePaperChat,
		SceneTranslation,
		SceneSummary,
	}
}

// OutputFormat 输出格式
type OutputFormat string

const (
	OutputMarkdown  OutputFormat = "markdown"
	OutputPlainText OutputFormat = "plain_text"
	OutputJSON      OutputFormat = "json"
)

// PromptTemplate 提示词模板
// user_prompt_template 中可包含 {{variable}} 占位符，
// 由 prompt.ResolveVariables 做字面替换
type PromptTemplate struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"type:varchar(100);not null" json:"name"`
	Scene              Scene          `gorm:"type:varchar(30);not null;index" json:"scene"`
	SystemPrompt       string         `gorm:"type:text" json:"system_prompt"`
	UserPromptTemplate string         `gorm:"type:text" json:"user_prompt_template"`
	ResponseLanguage   string         `gorm:"type:varchar(30);not null;default:'中文'" json:"response_language"`
	OutputFormat       OutputFormat   `gorm:"type:varchar(20);not null;default:'markdown'" json:"output_format"`
	Temperature        float64        `gorm:"not null;default:0.7" json:"temperature"` // 合法区间 [0,2]
	MaxTokens          int            `gorm:"not null;default:4096" json:"max_tokens"`
	BoundModelID       *uint          `json:"bound_model_id,omitempty"` // 可选的模型钉选
	IsBuiltIn          bool           `gorm:"not null;default:false" json:"is_built_in"` // 内置模板不可删除
	SortOrder          int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (PromptTemplate) TableName() string {
	return "prompt_templates"
}
