package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/api/handlers"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/chat"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/llm"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/prompt"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/provider"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/scene"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/secret"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/usage"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, encryptionKey []byte) *gin.Engine {
	// 创建 Gin 引擎
	router := gin.Default()

	// CORS：本地前端开发端口
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4321", "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 健康检查端点
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "ArxivLearner",
		})
	})

	// 共享依赖
	secrets := secret.NewGormStore(db, encryptionKey)
	llmRouter := llm.NewRouter(secrets)
	providerRepo := provider.NewRepository(db)
	providerService := provider.NewService(providerRepo, secrets)
	templateRepo := prompt.NewRepository(db)
	resolver := scene.NewResolver(db)
	usageRepo := usage.NewRepository(db)
	usageService := usage.NewService(usageRepo)
	chatService := chat.NewService(db, llmRouter, resolver, templateRepo, providerRepo, usageService)

	// API 路由组
	apiGroup := router.Group("/api")
	{
		setupProviderRoutes(apiGroup, providerService, llmRouter)
		setupModelRoutes(apiGroup, providerService)
		setupTemplateRoutes(apiGroup, templateRepo)
		setupSceneRoutes(apiGroup, resolver, providerService, templateRepo)
		setupPaperRoutes(apiGroup, db)
		setupChatRoutes(apiGroup, chatService)
		setupStatsRoutes(apiGroup, usageRepo)
	}

	return router
}

// setupProviderRoutes 配置供应商路由
func setupProviderRoutes(group *gin.RouterGroup, service *provider.Service, llmRouter *llm.Router) {
	handler := handlers.NewProviderHandler(service, llmRouter)

	providers := group.Group("/providers")
	{
		providers.POST("", handler.CreateProvider)
		providers.GET("", handler.ListProviders)
		providers.GET("/:id", handler.GetProvider)
		providers.PUT("/:id", handler.UpdateProvider)
		providers.DELETE("/:id", handler.DeleteProvider)
		providers.POST("/:id/test", handler.TestProvider)
	}

	// OpenRouter 模型目录（失败时回退静态列表）
	group.GET("/openrouter/models", handler.ListOpenRouterModels)
}

// setupModelRoutes 配置模型路由
func setupModelRoutes(group *gin.RouterGroup, service *provider.Service) {
	handler := handlers.NewModelHandler(service)

	modelGroup := group.Group("/models")
	{
		modelGroup.POST("", handler.CreateModel)
		modelGroup.GET("", handler.ListModels)
		modelGroup.GET("/:id", handler.GetModel)
		modelGroup.PUT("/:id", handler.UpdateModel)
		modelGroup.DELETE("/:id", handler.DeleteModel)
	}
}

// setupTemplateRoutes 配置提示词模板路由
func setupTemplateRoutes(group *gin.RouterGroup, repo *prompt.Repository) {
	handler := handlers.NewTemplateHandler(repo)

	templates := group.Group("/templates")
	{
		templates.POST("", handler.CreateTemplate)
		templates.GET("", handler.ListTemplates)
		templates.GET("/:id", handler.GetTemplate)
		templates.PUT("/:id", handler.UpdateTemplate)
		templates.DELETE("/:id", handler.DeleteTemplate)
	}
}

// setupSceneRoutes 配置场景默认模型路由
func setupSceneRoutes(group *gin.RouterGroup, resolver *scene.Resolver, providers *provider.Service, templates *prompt.Repository) {
	handler := handlers.NewSceneHandler(resolver, providers, templates)

	scenes := group.Group("/scenes")
	{
		scenes.GET("", handler.ListScenes)
		scenes.DELETE("/defaults", handler.ClearAllSceneDefaults)
		scenes.GET("/:scene/model", handler.GetSceneModel)
		scenes.PUT("/:scene/default", handler.SetSceneDefault)
	}
}

// setupPaperRoutes 配置论文路由
func setupPaperRoutes(group *gin.RouterGroup, db *gorm.DB) {
	handler := handlers.NewPaperHandler(db)

	papers := group.Group("/papers")
	{
		papers.POST("", handler.CreatePaper)
		papers.GET("", handler.ListPapers)
		papers.GET("/:id", handler.GetPaper)
		papers.PUT("/:id", handler.UpdatePaper)
		papers.DELETE("/:id", handler.DeletePaper)
	}
}

// setupChatRoutes 配置对话路由
func setupChatRoutes(group *gin.RouterGroup, service *chat.Service) {
	handler := handlers.NewChatHandler(service)

	chatGroup := group.Group("/chat")
	{
		chatGroup.POST("", handler.Ask)
		chatGroup.POST("/stream", handler.AskStream)
	}
}

// setupStatsRoutes 配置用量统计路由
func setupStatsRoutes(group *gin.RouterGroup, repo *usage.Repository) {
	handler := handlers.NewStatsHandler(repo)

	stats := group.Group("/stats")
	{
		stats.GET("/summary", handler.GetSummary)
		stats.GET("/records", handler.ListRecords)
	}
}
