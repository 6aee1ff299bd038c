package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	WorkspaceHandler  *WorkspaceHandler
	IngestHandler     *IngestHandler
	GenerationHandler *GenerationHandler
	ChatHandler       *ChatHandler
	AllowOrigins      []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Organization-ID", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", HealthCheck)

	api := router.Group("/api")
	api.Use(RequireOrganization())
	{
		api.POST("/sources/ingest", cfg.IngestHandler.Ingest)
		api.POST("/contents/generate", cfg.GenerationHandler.Generate)
		api.POST("/contents/:id/sections/patch", cfg.GenerationHandler.PatchSection)
		api.GET("/contents/:id/workspace", cfg.WorkspaceHandler.GetWorkspace)
		api.POST("/chat/turn", cfg.ChatHandler.Turn)
	}

	return router
}
