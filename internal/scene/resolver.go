package scene

import (
	"errors"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/gorm"
)

// Resolver 生效模型解析器
// 严格按三级优先级短路求值：
//  1. 模板钉选的模型（须仍然启用）
//  2. 场景级保存的默认模型（按 ID 重取，须仍存在且启用）
//  3. 全局默认：首个 is_default 且 enabled 的模型（按最小 ID）
//
// 三级都落空时返回 nil —— 显式的“未配置”，从不 panic
type Resolver struct {
	db    *gorm.DB
	prefs *PreferenceRepository
}

// NewResolver 创建 Resolver 实例
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{
		db:    db,
		prefs: NewPreferenceRepository(db),
	}
}

// Preferences 暴露偏好存储，供设置界面使用
func (r *Resolver) Preferences() *PreferenceRepository {
	return r.prefs
}

// Resolve 解析场景的生效模型
// template 可为 nil；返回 nil 表示“LLM 未配置”
func (r *Resolver) Resolve(template *models.PromptTemplate, sc models.Scene) (*models.Model, error) {
	// 第一级：模板钉选
	if template != nil && template.BoundModelID != nil {
		model, err := r.findEnabledByID(*template.BoundModelID)
		if err != nil {
			return nil, err
		}
		if model != nil {
			return model, nil
		}
		// 钉选失效（被删除或停用）继续向下
	}

	// 第二级：场景覆盖
	modelID, found, err := r.prefs.Get(sc)
	if err != nil {
		return nil, err
	}
	if found {
		model, err := r.findEnabledByID(modelID)
		if err != nil {
			return nil, err
		}
		if model != nil {
			return model, nil
		}
		// 指向已停用或已删除模型的陈旧覆盖视为不存在
	}

	// 第三级：全局默认
	var model models.Model
	err = r.db.Where("is_default = ? AND enabled = ?", true, true).
		Order("id ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &model, nil
}

// SetSceneDefault 保存场景默认模型，model 为 nil 时清除覆盖
func (r *Resolver) SetSceneDefault(model *models.Model, sc models.Scene) error {
	if model == nil {
		return r.prefs.Clear(sc)
	}
	return r.prefs.Set(sc, model.ID)
}

// ClearAllSceneDefaults 清空全部场景覆盖
func (r *Resolver) ClearAllSceneDefaults() error {
	return r.prefs.ClearAll()
}

// findEnabledByID 按 ID 取模型，不存在或未启用返回 nil
func (r *Resolver) findEnabledByID(id uint) (*models.Model, error) {
	var model models.Model
	err := r.db.First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !model.Enabled {
		return nil, nil
	}
	return &model, nil
}
