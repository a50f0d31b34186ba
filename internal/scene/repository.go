// Package scene 场景级模型分配策略
// 场景 → 默认模型的类型化偏好存储，以及三级优先级的
// 生效模型解析
package scene

import (
	"errors"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/gorm"
)

// PreferenceRepository 场景偏好数据访问层
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository 创建 PreferenceRepository 实例
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get 取出场景的模型 ID 覆盖，不存在时返回 (0, false)
func (r *PreferenceRepository) Get(scene models.Scene) (uint, bool, error) {
	var pref models.ScenePreference
	err := r.db.Where("scene = ?", scene).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return pref.ModelID, true, nil
}

// Set 保存场景的模型覆盖，已存在则更新
func (r *PreferenceRepository) Set(scene models.Scene, modelID uint) error {
	var pref models.ScenePreference
	err := r.db.Where("scene = ?", scene).First(&pref).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.db.Create(&models.ScenePreference{Scene: scene, ModelID: modelID}).Error
	}

	pref.ModelID = modelID
	return r.db.Save(&pref).Error
}

// Clear 清除单个场景的覆盖
func (r *PreferenceRepository) Clear(scene models.Scene) error {
	return r.db.Where("scene = ?", scene).Delete(&models.ScenePreference{}).Error
}

// ClearAll 清除所有场景覆盖
func (r *PreferenceRepository) ClearAll() error {
	return r.db.Where("1 = 1").Delete(&models.ScenePreference{}).Error
}
