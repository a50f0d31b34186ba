package models

import "time"

// ScenePreference 场景级默认模型偏好
// 场景 → 模型 ID 的类型化映射，每个场景至多一条
type ScenePreference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Scene     Scene     `gorm:"type:varchar(30);not null;uniqueIndex" json:"scene"`
	ModelID   uint      `gorm:"not null" json:"model_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ScenePreference) TableName() string {
	return "scene_preferences"
}
