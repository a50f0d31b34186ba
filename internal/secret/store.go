// Package secret 凭证存储
// Router 通过注入的 Store 接口按需取用明文凭证，
// 凭证只在单次请求的生命周期内存在于内存中
package secret

import (
	"errors"
	"sync"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/crypto"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/gorm"
)

// Store 凭证存储接口
// Retrieve 在 ref 不存在时返回空字符串而非错误，
// 由上游供应商的 401 作为凭证问题的唯一裁决者
type Store interface {
	// Retrieve 按引用取出明文凭证，缺失时返回 ""
	Retrieve(ref string) (string, error)
	// Save 写入（或覆盖）凭证
	Save(ref, value string) error
	// Delete 删除凭证
	Delete(ref string) error
}

// GormStore 基于数据库的凭证存储
// 密文用 AES-256-GCM 加密后落库
type GormStore struct {
	db            *gorm.DB
	encryptionKey []byte
}

// NewGormStore 创建数据库凭证存储
func NewGormStore(db *gorm.DB, encryptionKey []byte) *GormStore {
	return &GormStore{db: db, encryptionKey: encryptionKey}
}

// Retrieve 按引用取出明文凭证
// 记录不存在时静默返回空字符串
func (s *GormStore) Retrieve(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}

	var cred models.Credential
	err := s.db.Where("ref = ?", ref).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	if s.encryptionKey == nil {
		// 未配置加密密钥时按明文存取（测试/开发环境）
		return cred.Ciphertext, nil
	}

	return crypto.DecryptString(cred.Ciphertext, s.encryptionKey)
}

// Save 写入凭证，已存在则覆盖
func (s *GormStore) Save(ref, value string) error {
	stored := value
	if s.encryptionKey != nil {
		encrypted, err := crypto.EncryptString(value, s.encryptionKey)
		if err != nil {
			return err
		}
		stored = encrypted
	}

	var cred models.Credential
	err := s.db.Where("ref = ?", ref).First(&cred).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.db.Create(&models.Credential{Ref: ref, Ciphertext: stored}).Error
	}

	cred.Ciphertext = stored
	return s.db.Save(&cred).Error
}

// Delete 删除凭证
func (s *GormStore) Delete(ref string) error {
	return s.db.Where("ref = ?", ref).Delete(&models.Credential{}).Error
}

// MemoryStore 内存凭证存储（测试用）
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]string
}

// NewMemoryStore 创建内存凭证存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]string)}
}

// Retrieve 取出凭证，缺失时返回空字符串
func (s *MemoryStore) Retrieve(ref string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds[ref], nil
}

// Save 写入凭证
func (s *MemoryStore) Save(ref, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[ref] = value
	return nil
}

// Delete 删除凭证
func (s *MemoryStore) Delete(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, ref)
	return nil
}
