package provider

import (
	"errors"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrProviderNotFound 供应商不存在
	ErrProviderNotFound = errors.New("provider not found")
	// ErrProviderNameExists 供应商名称已存在
	ErrProviderNameExists = errors.New("provider name already exists")
	// ErrModelNotFound 模型不存在
	ErrModelNotFound = errors.New("model not found")
)

// Repository 供应商与模型数据访问层
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建 Repository 实例
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建供应商
func (r *Repository) Create(provider *models.Provider) error {
	return r.db.Create(provider).Error
}

// FindByID 根据 ID 查找供应商
func (r *Repository) FindByID(id uint) (*models.Provider, error) {
	var provider models.Provider
	err := r.db.First(&provider, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &provider, nil
}

// FindAll 查找所有供应商，按排序字段排列
func (r *Repository) FindAll() ([]*models.Provider, error) {
	var providers []*models.Provider
	err := r.db.Order("sort_order ASC, id ASC").Find(&providers).Error
	return providers, err
}

// Update 更新供应商
func (r *Repository) Update(provider *models.Provider) error {
	return r.db.Save(provider).Error
}

// Delete 删除供应商，级联删除其下所有模型
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_id = ?", id).Delete(&models.Model{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Provider{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProviderNotFound
		}
		return nil
	})
}

// CheckNameExists 检查名称是否存在（排除指定 ID）
func (r *Repository) CheckNameExists(name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Provider{}).Where("name = ?", name)
	if excludeID > 0 {
		query = query.Where("id != ?", excludeID)
	}
	err := query.Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ==================== 模型 ====================

// CreateModel 创建模型
func (r *Repository) CreateModel(model *models.Model) error {
	return r.db.Create(model).Error
}

// FindModelByID 根据 ID 查找模型
func (r *Repository) FindModelByID(id uint) (*models.Model, error) {
	var model models.Model
	err := r.db.First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return &model, nil
}

// FindModelsByProvider 查找供应商下的所有模型
func (r *Repository) FindModelsByProvider(providerID uint) ([]*models.Model, error) {
	var list []*models.Model
	err := r.db.Where("provider_id = ?", providerID).Order("id ASC").Find(&list).Error
	return list, err
}

// FindAllModels 查找所有模型
func (r *Repository) FindAllModels() ([]*models.Model, error) {
	var list []*models.Model
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

// UpdateModel 更新模型
func (r *Repository) UpdateModel(model *models.Model) error {
	return r.db.Save(model).Error
}

// DeleteModel 删除模型
func (r *Repository) DeleteModel(id uint) error {
	result := r.db.Delete(&models.Model{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrModelNotFound
	}
	return nil
}

// ClearDefaultExcept 清除除指定模型外的所有默认标记
// 保证全局默认至多一个（解析时仍按最小 ID 兜底）
func (r *Repository) ClearDefaultExcept(modelID uint) error {
	return r.db.Model(&models.Model{}).
		Where("id != ? AND is_default = ?", modelID, true).
		Update("is_default", false).Error
}
