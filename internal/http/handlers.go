package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/draftdeck-backend/internal/modules/generation"
	"github.com/yungbote/draftdeck-backend/internal/platform/envutil"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/services"
)

// Handlers are thin: bind, delegate, translate errors. All behavior lives
// in the services.

type WorkspaceHandler struct {
	log   *logger.Logger
	cache *services.WorkspaceCache
}

func NewWorkspaceHandler(log *logger.Logger, cache *services.WorkspaceCache) *WorkspaceHandler {
	return &WorkspaceHandler{log: log.With("handler", "WorkspaceHandler"), cache: cache}
}

// GET /api/contents/:id/workspace
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "content_id_invalid", "message": "content id must be a UUID"},
		})
		return
	}
	includeChat := c.Query("includeChat") == "true"

	payload, err := h.cache.GetOrCompute(c.Request.Context(), organizationID(c), contentID, includeChat)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

type IngestHandler struct {
	log     *logger.Logger
	sources *services.SourceContentService
}

func NewIngestHandler(log *logger.Logger, sources *services.SourceContentService) *IngestHandler {
	return &IngestHandler{log: log.With("handler", "IngestHandler"), sources: sources}
}

type ingestRequest struct {
	SourceType   string         `json:"sourceType"`
	ExternalID   *string        `json:"externalId"`
	Title        string         `json:"title"`
	SourceText   string         `json:"sourceText" binding:"required"`
	Metadata     map[string]any `json:"metadata"`
	ChunkSize    int            `json:"chunkSize"`
	ChunkOverlap int            `json:"chunkOverlap"`

	VideoURL            string    `json:"videoUrl"`
	ScreencapTimestamps []float64 `json:"screencapTimestamps"`
}

// POST /api/sources/ingest
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_request", "message": err.Error()},
		})
		return
	}

	var metadata datatypes.JSON
	if req.Metadata != nil {
		if raw, err := json.Marshal(req.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	src, chunks, err := h.sources.Ingest(c.Request.Context(), services.IngestInput{
		OrganizationID: organizationID(c),
		SourceType:     req.SourceType,
		ExternalID:     req.ExternalID,
		Title:          req.Title,
		SourceText:     req.SourceText,
		Metadata:       metadata,
		ChunkSize:      req.ChunkSize,
		ChunkOverlap:   req.ChunkOverlap,

		VideoURL:            req.VideoURL,
		ScreencapTimestamps: req.ScreencapTimestamps,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": src, "chunkCount": len(chunks)})
}

type GenerationHandler struct {
	log *logger.Logger
	gen *generation.Service
}

func NewGenerationHandler(log *logger.Logger, gen *generation.Service) *GenerationHandler {
	return &GenerationHandler{log: log.With("handler", "GenerationHandler"), gen: gen}
}

type generateRequest struct {
	ContentID       *uuid.UUID `json:"contentId"`
	SourceContentID *uuid.UUID `json:"sourceContentId"`
	SourceText      string     `json:"sourceText"`
	ConversationID  *uuid.UUID `json:"conversationId"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Status          string     `json:"status"`
	ContentType     string     `json:"contentType"`
	PrimaryKeyword  string     `json:"primaryKeyword"`
	TargetLocale    string     `json:"targetLocale"`
	SystemPrompt    string     `json:"systemPrompt"`
	Temperature     *float64   `json:"temperature"`
}

// POST /api/contents/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_request", "message": err.Error()},
		})
		return
	}

	result, err := h.gen.GenerateDraft(c.Request.Context(), generation.GenerateDraftInput{
		OrganizationID:  organizationID(c),
		ContentID:       req.ContentID,
		SourceContentID: req.SourceContentID,
		SourceText:      req.SourceText,
		ConversationID:  req.ConversationID,
		Title:           req.Title,
		Slug:            req.Slug,
		Status:          req.Status,
		ContentType:     req.ContentType,
		PrimaryKeyword:  req.PrimaryKeyword,
		TargetLocale:    req.TargetLocale,
		SystemPrompt:    req.SystemPrompt,
		Temperature:     req.Temperature,
		BaseURL:         envutil.Str("PUBLIC_BASE_URL", ""),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type patchSectionRequest struct {
	SectionIndex *int     `json:"sectionIndex"`
	SectionTitle string   `json:"sectionTitle"`
	Instructions string   `json:"instructions"`
	Temperature  *float64 `json:"temperature"`
}

// POST /api/contents/:id/sections/patch
func (h *GenerationHandler) PatchSection(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "content_id_invalid", "message": "content id must be a UUID"},
		})
		return
	}
	var req patchSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_request", "message": err.Error()},
		})
		return
	}

	result, err := h.gen.PatchSection(c.Request.Context(), generation.PatchSectionInput{
		OrganizationID: organizationID(c),
		ContentID:      contentID,
		SectionIndex:   req.SectionIndex,
		SectionTitle:   req.SectionTitle,
		Instructions:   req.Instructions,
		Temperature:    req.Temperature,
		BaseURL:        envutil.Str("PUBLIC_BASE_URL", ""),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type ChatHandler struct {
	log   *logger.Logger
	turns *services.ChatTurnService
}

func NewChatHandler(log *logger.Logger, turns *services.ChatTurnService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), turns: turns}
}

type chatTurnRequest struct {
	ConversationID *uuid.UUID `json:"conversationId"`
	ContentID      *uuid.UUID `json:"contentId"`
	Message        string     `json:"message" binding:"required"`
	ContextBlocks  []string   `json:"contextBlocks"`
}

// POST /api/chat/turn
func (h *ChatHandler) Turn(c *gin.Context) {
	var req chatTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_request", "message": err.Error()},
		})
		return
	}

	result, err := h.turns.RunTurn(c.Request.Context(), services.ChatTurnInput{
		OrganizationID: organizationID(c),
		ConversationID: req.ConversationID,
		ContentID:      req.ContentID,
		UserMessage:    req.Message,
		ContextBlocks:  req.ContextBlocks,
		BaseURL:        envutil.Str("PUBLIC_BASE_URL", ""),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
