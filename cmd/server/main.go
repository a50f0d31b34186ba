package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/api"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/config"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/crypto"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/db"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/prompt"
)

const (
	// Version 项目版本
	Version = "0.1.0"
	// AppName 应用名称
	AppName = "ArxivLearner"
)

func main() {
	log.Printf("=== %s v%s ===\n", AppName, Version)

	// .env 可选，不存在则直接用进程环境
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  未找到 .env 文件，使用进程环境变量")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	// 凭证加密密钥：缺失时降级为明文存储并告警
	encryptionKey, err := crypto.LoadEncryptionKey()
	if err != nil {
		if errors.Is(err, crypto.ErrMissingEncryptionKey) {
			log.Println("⚠️  未设置 ENCRYPTION_KEY，凭证将以明文存储（仅建议在开发环境使用）")
		} else {
			log.Fatalf("❌ 加密密钥加载失败: %v", err)
		}
	}

	database, err := db.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("❌ 数据库初始化失败: %v", err)
	}
	defer func() {
		if err := db.CloseDatabase(database); err != nil {
			log.Printf("⚠️  数据库关闭失败: %v", err)
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(database); err != nil {
			log.Fatalf("❌ 数据库迁移失败: %v", err)
		}
	}

	// 内置提示词模板（幂等，按场景补种）
	if err := prompt.SeedBuiltinTemplates(database); err != nil {
		log.Fatalf("❌ 内置模板初始化失败: %v", err)
	}

	router := api.SetupRouter(database, encryptionKey)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Printf("🚀 服务启动: http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ 服务启动失败: %v", err)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("👋 收到退出信号，正在关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  服务关闭失败: %v", err)
	}
}
