package prompt

import (
	"errors"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrTemplateNotFound 模板不存在
	ErrTemplateNotFound = errors.New("prompt template not found")
	// ErrBuiltInTemplate 内置模板不可删除
	ErrBuiltInTemplate = errors.New("built-in template cannot be deleted")
)

// Repository 模板数据访问层
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建 Repository 实例
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID 根据 ID 查找模板
func (r *Repository) FindByID(id uint) (*models.PromptTemplate, error) {
	var tpl models.PromptTemplate
	err := r.db.First(&tpl, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// FindByScene 查找某场景下的全部模板，按排序字段排列
func (r *Repository) FindByScene(scene models.Scene) ([]*models.PromptTemplate, error) {
	var templates []*models.PromptTemplate
	err := r.db.Where("scene = ?", scene).
		Order("sort_order ASC, id ASC").
		Find(&templates).Error
	return templates, err
}

// FindAll 查找所有模板
func (r *Repository) FindAll() ([]*models.PromptTemplate, error) {
	var templates []*models.PromptTemplate
	err := r.db.Order("sort_order ASC, id ASC").Find(&templates).Error
	return templates, err
}

// Create 创建模板
func (r *Repository) Create(tpl *models.PromptTemplate) error {
	return r.db.Create(tpl).Error
}

// Update 更新模板
func (r *Repository) Update(tpl *models.PromptTemplate) error {
	return r.db.Save(tpl).Error
}

// Delete 删除模板，内置模板拒绝删除
func (r *Repository) Delete(id uint) error {
	tpl, err := r.FindByID(id)
	if err != nil {
		return err
	}
	if tpl.IsBuiltIn {
		return ErrBuiltInTemplate
	}
	return r.db.Delete(&models.PromptTemplate{}, id).Error
}
