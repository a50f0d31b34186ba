package db

import (
	"testing"
	"time"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/config"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/gorm"
)

// setupTestDB 创建测试用内存数据库
func setupTestDB(t *testing.T) *gorm.DB {
	cfg := &config.DatabaseConfig{
		Path:            ":memory:",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}

	db, err := InitDatabase(cfg)
	if err != nil {
		t.Fatalf("初始化测试数据库失败: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

// TestInitDatabase 测试数据库初始化与连接池配置
func TestInitDatabase(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Path:            ":memory:",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}

	db, err := InitDatabase(cfg)
	if err != nil {
		t.Fatalf("初始化数据库失败: %v", err)
	}
	if db == nil {
		t.Fatal("数据库连接为 nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取 SQL DB 失败: %v", err)
	}

	stats := sqlDB.Stats()
	if stats.MaxOpenConnections != 10 {
		t.Errorf("最大连接数配置错误: got %d, want 10", stats.MaxOpenConnections)
	}
}

// TestAutoMigrate 测试自动迁移建表
func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	tables := []interface{}{
		&models.Provider{},
		&models.Model{},
		&models.PromptTemplate{},
		&models.ScenePreference{},
		&models.UsageRecord{},
		&models.Paper{},
		&models.ChatRecord{},
		&models.Credential{},
	}

	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("表 %T 不存在", table)
		}
	}
}

// TestAutoMigrate_Idempotent 迁移可安全重复执行
func TestAutoMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := AutoMigrate(db); err != nil {
		t.Errorf("重复迁移应当成功: %v", err)
	}
}

// TestDatabase_BasicCRUD 验证迁移后的表可以正常读写
func TestDatabase_BasicCRUD(t *testing.T) {
	db := setupTestDB(t)

	prov := &models.Provider{
		Name:    "Test Provider",
		Type:    models.ProviderOpenAI,
		BaseURL: "https://api.test.com/v1",
		Enabled: true,
	}
	if err := db.Create(prov).Error; err != nil {
		t.Fatalf("创建供应商失败: %v", err)
	}
	if prov.ID == 0 {
		t.Error("创建后应分配主键")
	}

	var found models.Provider
	if err := db.First(&found, prov.ID).Error; err != nil {
		t.Fatalf("查询供应商失败: %v", err)
	}
	if found.Name != "Test Provider" {
		t.Errorf("查询结果错误: %+v", found)
	}

	// 软删除后默认查询不可见
	if err := db.Delete(prov).Error; err != nil {
		t.Fatalf("删除供应商失败: %v", err)
	}
	err := db.First(&found, prov.ID).Error
	if err != gorm.ErrRecordNotFound {
		t.Errorf("软删除后应查不到记录, got %v", err)
	}
}
