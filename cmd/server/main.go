package main

import (
	"fmt"
	"os"
	"time"

	chatrepo "github.com/yungbote/draftdeck-backend/internal/data/repos/chat"
	contentrepo "github.com/yungbote/draftdeck-backend/internal/data/repos/content"
	"github.com/yungbote/draftdeck-backend/internal/data/repos/sourcing"
	"github.com/yungbote/draftdeck-backend/internal/db"
	apphttp "github.com/yungbote/draftdeck-backend/internal/http"
	"github.com/yungbote/draftdeck-backend/internal/modules/chatagent"
	"github.com/yungbote/draftdeck-backend/internal/modules/generation"
	"github.com/yungbote/draftdeck-backend/internal/modules/media"
	"github.com/yungbote/draftdeck-backend/internal/platform/envutil"
	"github.com/yungbote/draftdeck-backend/internal/platform/gcs"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
	"github.com/yungbote/draftdeck-backend/internal/platform/vectorize"
	"github.com/yungbote/draftdeck-backend/internal/services"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	pg := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	sourceRepo := sourcing.NewSourceContentRepo(pg, log)
	chunkRepo := sourcing.NewChunkRepo(pg, log)
	contentRepo := contentrepo.NewContentRepo(pg, log)
	versionRepo := contentrepo.NewContentVersionRepo(pg, log)
	conversationRepo := chatrepo.NewConversationRepo(pg, log)
	messageRepo := chatrepo.NewMessageRepo(pg, log)
	logRepo := chatrepo.NewLogRepo(pg, log)

	// Platform clients
	log.Info("Setting up platform clients...")
	aiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}

	var vectorStore vectorize.VectorStore
	if vcfg, ok := vectorize.ConfigFromEnv(); ok {
		vc, vErr := vectorize.New(log, vcfg)
		if vErr == nil {
			vectorStore, vErr = vectorize.NewVectorStore(log, vc)
		}
		if vErr != nil {
			log.Warn("Vector store init failed; retrieval degrades to chunk order", "error", vErr)
			vectorStore = nil
		}
	} else {
		log.Info("No vector index configured; retrieval uses chunk order")
	}

	var screencapSvc *media.ScreencapService
	if bucket, bErr := gcs.NewBucketService(log); bErr != nil {
		log.Warn("Object storage init failed; screencap capture disabled", "error", bErr)
	} else {
		screencapSvc = media.NewScreencapService(bucket, log)
	}

	// Services
	log.Info("Setting up services...")
	chunkSvc := generation.NewChunkService(chunkRepo, aiClient, vectorStore, log)
	retriever := generation.NewRetriever(chunkRepo, aiClient, vectorStore, log)
	planner := generation.NewPlanner(aiClient, log)
	notifier := services.NewRedisNotifier(log)
	defer notifier.Close()

	workspaceSvc := services.NewWorkspaceService(contentRepo, versionRepo, sourceRepo, chunkRepo, messageRepo, logRepo, log)
	workspaceCache := services.NewWorkspaceCache(workspaceSvc, time.Now, log)

	genSvc := generation.NewService(contentRepo, versionRepo, sourceRepo, chunkSvc, retriever, planner, aiClient, workspaceCache, notifier, log)
	sourceSvc := services.NewSourceContentService(sourceRepo, chunkSvc, screencapSvc, log)
	agent := chatagent.NewAgent(aiClient, log)
	chatSvc := services.NewChatTurnService(conversationRepo, messageRepo, logRepo, agent, genSvc, workspaceCache, log)

	// HTTP
	server := apphttp.NewServer(apphttp.RouterConfig{
		WorkspaceHandler:  apphttp.NewWorkspaceHandler(log, workspaceCache),
		IngestHandler:     apphttp.NewIngestHandler(log, sourceSvc),
		GenerationHandler: apphttp.NewGenerationHandler(log, genSvc),
		ChatHandler:       apphttp.NewChatHandler(log, chatSvc),
	})

	addr := envutil.Str("HTTP_ADDR", ":8080")
	log.Info("Starting HTTP server", "addr", addr)
	if err := server.Run(addr); err != nil {
		log.Error("HTTP server exited", "error", err)
		os.Exit(1)
	}
}
