package models

import (
	"time"

	"gorm.io/gorm"
)

// Paper 论文记录
// arXiv 元数据 + 转换后的全文（如果已做 PDF → 文本转换）。
// 搜索与下载由外部协作方完成，本核心只读这些字段
type Paper struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ArxivID    string         `gorm:"type:varchar(50);not null;uniqueIndex" json:"arxiv_id"`
	Title      string         `gorm:"type:text" json:"title"`
	Abstract   string         `gorm:"type:text" json:"abstract"`
	Authors    string         `gorm:"type:text" json:"authors"`    // 逗号分隔
	Categories string         `gorm:"type:text" json:"categories"` // 逗号分隔
	FullText   string         `gorm:"type:text" json:"full_text"`  // 空表示尚未转换
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Paper) TableName() string {
	return "papers"
}

// HasFullText 是否存在已转换的全文
func (p *Paper) HasFullText() bool {
	return p.FullText != ""
}
