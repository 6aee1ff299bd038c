package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	contentrepo "github.com/yungbote/draftdeck-backend/internal/data/repos/content"
	"github.com/yungbote/draftdeck-backend/internal/data/repos/sourcing"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

// CacheInvalidator drops cached workspace payloads for a content row after
// a mutation. A nil invalidator is legal in tests.
type CacheInvalidator interface {
	Invalidate(organizationID, contentID uuid.UUID)
}

// Notifier publishes draft lifecycle events. A nil notifier is legal.
type Notifier interface {
	Publish(ctx context.Context, event string, payload any)
}

// GenerateDraftInput describes one draft-generation request. Exactly which
// grounding the pipeline uses follows from which fields are set.
type GenerateDraftInput struct {
	OrganizationID  uuid.UUID
	ContentID       *uuid.UUID
	SourceContentID *uuid.UUID
	SourceText      string
	ConversationID  *uuid.UUID
	History         []domain.ConversationMessage

	Title          string
	Slug           string
	Status         string
	ContentType    string
	PrimaryKeyword string
	TargetLocale   string
	SystemPrompt   string
	Temperature    *float64
	BaseURL        string
}

// GenerateDraftResult reports the persisted draft plus any sections that
// failed to generate. Failed sections never abort the draft.
type GenerateDraftResult struct {
	Content        *domain.Content        `json:"content"`
	Version        *domain.ContentVersion `json:"version"`
	Mode           Mode                   `json:"mode"`
	Markdown       string                 `json:"markdown"`
	EnrichedMdx    string                 `json:"enrichedMdx"`
	Sections       []Section              `json:"sections"`
	FailedSections []FailedSection        `json:"failedSections,omitempty"`
}

// PatchSectionInput regenerates one section of an existing draft.
type PatchSectionInput struct {
	OrganizationID uuid.UUID
	ContentID      uuid.UUID
	SectionIndex   *int
	SectionTitle   string
	Instructions   string
	Temperature    *float64
	BaseURL        string
}

// Service runs the full draft pipeline: mode selection, grounding,
// planning, section generation, assembly, enrichment, persistence.
type Service struct {
	contents  contentrepo.ContentRepo
	versions  contentrepo.ContentVersionRepo
	sources   sourcing.SourceContentRepo
	chunkSvc  *ChunkService
	retriever *Retriever
	planner   *Planner
	ai        openai.Client
	cache     CacheInvalidator
	notifier  Notifier
	log       *logger.Logger
}

func NewService(
	contents contentrepo.ContentRepo,
	versions contentrepo.ContentVersionRepo,
	sources sourcing.SourceContentRepo,
	chunkSvc *ChunkService,
	retriever *Retriever,
	planner *Planner,
	ai openai.Client,
	cache CacheInvalidator,
	notifier Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		contents:  contents,
		versions:  versions,
		sources:   sources,
		chunkSvc:  chunkSvc,
		retriever: retriever,
		planner:   planner,
		ai:        ai,
		cache:     cache,
		notifier:  notifier,
		log:       log.With("service", "GenerationService"),
	}
}

// GenerateDraft runs the whole pipeline and persists the result as a new
// content version.
func (s *Service) GenerateDraft(ctx context.Context, in GenerateDraftInput) (*GenerateDraftResult, error) {
	if in.OrganizationID == uuid.Nil {
		return nil, apierr.Validationf("organization_required", "organizationId is required")
	}

	hasSource := in.SourceContentID != nil || strings.TrimSpace(in.SourceText) != ""
	hasHistory := hasConversationHistory(in.History)
	mode := DetermineMode(hasSource, hasHistory)

	outlineIn := OutlineInput{
		Mode:              mode,
		Title:             in.Title,
		ContentType:       in.ContentType,
		PrimaryKeyword:    in.PrimaryKeyword,
		TargetLocale:      in.TargetLocale,
		ExtraInstructions: in.SystemPrompt,
		Temperature:       in.Temperature,
	}

	if mode == ModeHybrid || mode == ModeConversation {
		outlineIn.ConversationContext = SynthesizeConversationContext(ctx, s.ai, s.log, in.History)
		s.persistConversationContext(ctx, in, outlineIn.ConversationContext)
	}

	var src *domain.SourceContent
	if hasSource {
		var err error
		src, err = s.resolveSource(ctx, in)
		if err != nil {
			return nil, err
		}
		excerpts, err := s.groundingExcerpts(ctx, in.OrganizationID, src, in.Title, outlineIn.ConversationContext)
		if err != nil {
			return nil, err
		}
		outlineIn.SourceExcerpts = excerpts
	}

	outline, err := s.planner.GenerateContentOutline(ctx, outlineIn)
	if err != nil {
		return nil, err
	}
	secResult, err := s.planner.GenerateSectionsFromOutline(ctx, outline, outlineIn)
	if err != nil {
		return nil, err
	}
	if len(secResult.Sections) == 0 {
		return nil, apierr.Dependency("all_sections_failed",
			fmt.Errorf("every section failed to generate"))
	}

	fm := outline.Frontmatter
	applyRequestedFrontmatter(&fm, in)
	markdown, sections := AssembleMarkdownFromSections(fm, secResult.Sections)
	enriched, err := EnrichMarkdownWithMetadata(EnrichInput{
		Markdown:    markdown,
		Frontmatter: fm,
		Seo:         outline.Seo,
		BaseURL:     in.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	contentRow, version, err := s.persistDraft(ctx, in, src, fm, outline.Seo, sections, markdown, enriched)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(in.OrganizationID, contentRow.ID)
	}
	if s.notifier != nil {
		s.notifier.Publish(ctx, "draft.generated", map[string]any{
			"contentId": contentRow.ID.String(),
			"version":   version.Version,
			"mode":      string(mode),
			"failed":    len(secResult.Failed),
		})
	}
	s.log.Info("draft generated",
		"content_id", contentRow.ID.String(),
		"version", version.Version,
		"mode", string(mode),
		"sections", len(sections),
		"failed_sections", len(secResult.Failed),
	)

	return &GenerateDraftResult{
		Content:        contentRow,
		Version:        version,
		Mode:           mode,
		Markdown:       markdown,
		EnrichedMdx:    enriched,
		Sections:       sections,
		FailedSections: secResult.Failed,
	}, nil
}

// PatchSection regenerates one section of the latest version and persists
// the result as a new version.
func (s *Service) PatchSection(ctx context.Context, in PatchSectionInput) (*GenerateDraftResult, error) {
	if in.ContentID == uuid.Nil {
		return nil, apierr.Validationf("content_required", "contentId is required")
	}

	contentRow, err := s.contents.GetByID(dbctx.New(ctx), in.OrganizationID, in.ContentID)
	if err != nil {
		return nil, err
	}
	latest, err := s.versions.GetLatest(dbctx.New(ctx), contentRow.ID)
	if err != nil {
		return nil, err
	}

	var fm Frontmatter
	if err := json.Unmarshal(latest.Frontmatter, &fm); err != nil {
		return nil, fmt.Errorf("stored frontmatter unreadable: %w", err)
	}
	var seo SeoSnapshot
	if len(latest.SeoSnapshot) > 0 {
		_ = json.Unmarshal(latest.SeoSnapshot, &seo)
	}
	var sections []Section
	if err := json.Unmarshal(latest.Sections, &sections); err != nil {
		return nil, fmt.Errorf("stored sections unreadable: %w", err)
	}

	target, err := resolveSectionTarget(sections, in.SectionIndex, in.SectionTitle)
	if err != nil {
		return nil, err
	}

	outline := outlineFromSections(fm, seo, sections)
	outlineIn := OutlineInput{Mode: ModeContext, Title: fm.Title, ContentType: fm.ContentType, Temperature: in.Temperature}
	if contentRow.SourceContentID != nil {
		src, err := s.sources.GetByID(dbctx.New(ctx), in.OrganizationID, *contentRow.SourceContentID)
		if err == nil {
			query := sections[target].Title
			if in.Instructions != "" {
				query = query + " " + in.Instructions
			}
			excerpts, exErr := s.groundingExcerpts(ctx, in.OrganizationID, src, query, "")
			if exErr == nil {
				outlineIn.SourceExcerpts = excerpts
			}
		}
	}

	patched, err := s.planner.RegenerateSection(ctx, outline, target, in.Instructions, outlineIn)
	if err != nil {
		return nil, apierr.Dependency("section_patch_failed", err)
	}
	sections[target].Body = patched.Body

	markdown, rendered := AssembleMarkdownFromSections(fm, sections)
	enriched, err := EnrichMarkdownWithMetadata(EnrichInput{
		Markdown:    markdown,
		Frontmatter: fm,
		Seo:         seo,
		BaseURL:     in.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	version, err := s.persistVersion(ctx, contentRow, fm, seo, rendered, markdown, enriched)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(in.OrganizationID, contentRow.ID)
	}
	if s.notifier != nil {
		s.notifier.Publish(ctx, "draft.section_patched", map[string]any{
			"contentId": contentRow.ID.String(),
			"version":   version.Version,
			"section":   target,
		})
	}
	s.log.Info("section patched",
		"content_id", contentRow.ID.String(),
		"version", version.Version,
		"section_index", target,
	)

	return &GenerateDraftResult{
		Content:     contentRow,
		Version:     version,
		Mode:        ModeContext,
		Markdown:    markdown,
		EnrichedMdx: enriched,
		Sections:    rendered,
	}, nil
}

func (s *Service) resolveSource(ctx context.Context, in GenerateDraftInput) (*domain.SourceContent, error) {
	if in.SourceContentID != nil {
		return s.sources.GetByID(dbctx.New(ctx), in.OrganizationID, *in.SourceContentID)
	}

	// Inline text becomes a manual-transcript source so chunks and future
	// regenerations have a durable home.
	title := in.Title
	if title == "" {
		title = "Inline source"
	}
	src, err := s.sources.Upsert(dbctx.New(ctx), sourcing.SourceContentUpsertInput{
		OrganizationID: in.OrganizationID,
		SourceType:     domain.SourceTypeManualTranscript,
		Title:          &title,
		SourceText:     &in.SourceText,
		IngestStatus:   domain.IngestStatusIngested,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.chunkSvc.RegenerateForSource(ctx, src, DefaultChunkSize, DefaultChunkOverlap); err != nil {
		return nil, err
	}
	return src, nil
}

// persistConversationContext records the synthesized context as a
// conversation-type source keyed on the conversation id, so later turns can
// retrieve against it. Best-effort: losing the record costs retrieval
// quality, not the draft.
func (s *Service) persistConversationContext(ctx context.Context, in GenerateDraftInput, summary string) {
	if summary == "" || summary == NoIntentSentinel || in.ConversationID == nil {
		return
	}
	externalID := in.ConversationID.String()
	title := "Conversation context"
	src, err := s.sources.Upsert(dbctx.New(ctx), sourcing.SourceContentUpsertInput{
		OrganizationID: in.OrganizationID,
		SourceType:     domain.SourceTypeConversation,
		ExternalID:     &externalID,
		Title:          &title,
		SourceText:     &summary,
		IngestStatus:   domain.IngestStatusIngested,
	})
	if err != nil {
		s.log.Warn("conversation context persist failed", "error", err.Error())
		return
	}
	if _, err := s.chunkSvc.RegenerateForSource(ctx, src, DefaultChunkSize, DefaultChunkOverlap); err != nil {
		s.log.Warn("conversation context chunking failed",
			"source_content_id", src.ID.String(), "error", err.Error())
	}
}

func (s *Service) groundingExcerpts(ctx context.Context, organizationID uuid.UUID, src *domain.SourceContent, title, intent string) ([]string, error) {
	query := strings.TrimSpace(title + " " + intent)
	rows, err := s.retriever.RelevantChunks(ctx, organizationID, src.ID, query, defaultRetrievalTopK)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && strings.TrimSpace(src.SourceText) != "" {
		// Source was never chunked; do it now and retry once.
		if _, err := s.chunkSvc.RegenerateForSource(ctx, src, DefaultChunkSize, DefaultChunkOverlap); err != nil {
			return nil, err
		}
		rows, err = s.retriever.RelevantChunks(ctx, organizationID, src.ID, query, defaultRetrievalTopK)
		if err != nil {
			return nil, err
		}
	}
	excerpts := make([]string, 0, len(rows))
	for _, c := range rows {
		excerpts = append(excerpts, c.Text)
	}
	return excerpts, nil
}

func (s *Service) persistDraft(
	ctx context.Context,
	in GenerateDraftInput,
	src *domain.SourceContent,
	fm Frontmatter,
	seo SeoSnapshot,
	sections []Section,
	markdown, enriched string,
) (*domain.Content, *domain.ContentVersion, error) {
	dbc := dbctx.New(ctx)

	var contentRow *domain.Content
	if in.ContentID != nil {
		var err error
		contentRow, err = s.contents.GetByID(dbc, in.OrganizationID, *in.ContentID)
		if err != nil {
			return nil, nil, err
		}
	} else {
		contentRow = &domain.Content{
			ID:             uuid.New(),
			OrganizationID: in.OrganizationID,
			Title:          fm.Title,
			Slug:           fm.Slug,
			Status:         nonEmpty(fm.Status, "draft"),
			ContentType:    nonEmpty(fm.ContentType, "blog_post"),
			PrimaryKeyword: fm.PrimaryKeyword,
			TargetLocale:   fm.TargetLocale,
			ConversationID: in.ConversationID,
		}
		if src != nil {
			contentRow.SourceContentID = &src.ID
		}
		if err := s.contents.Create(dbc, contentRow); err != nil {
			return nil, nil, err
		}
	}

	version, err := s.persistVersion(ctx, contentRow, fm, seo, sections, markdown, enriched)
	if err != nil {
		return nil, nil, err
	}

	updates := map[string]interface{}{
		"current_version_id": version.ID,
		"title":              fm.Title,
		"status":             nonEmpty(fm.Status, contentRow.Status),
	}
	if fm.Slug != "" {
		updates["slug"] = fm.Slug
	}
	if src != nil {
		updates["source_content_id"] = src.ID
	}
	if err := s.contents.UpdateFields(dbc, contentRow.ID, updates); err != nil {
		return nil, nil, err
	}
	contentRow.CurrentVersionID = &version.ID
	contentRow.Title = fm.Title
	return contentRow, version, nil
}

func (s *Service) persistVersion(
	ctx context.Context,
	contentRow *domain.Content,
	fm Frontmatter,
	seo SeoSnapshot,
	sections []Section,
	markdown, enriched string,
) (*domain.ContentVersion, error) {
	fmJSON, err := json.Marshal(fm)
	if err != nil {
		return nil, err
	}
	secJSON, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}
	seoJSON, err := json.Marshal(seo)
	if err != nil {
		return nil, err
	}
	version := &domain.ContentVersion{
		ID:             uuid.New(),
		ContentID:      contentRow.ID,
		Frontmatter:    datatypes.JSON(fmJSON),
		Sections:       datatypes.JSON(secJSON),
		SeoSnapshot:    datatypes.JSON(seoJSON),
		BodyMarkdown:   markdown,
		EnrichedMdx:    enriched,
		StructuredData: BuildStructuredData(fm, seo, ""),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.versions.Create(dbctx.New(ctx), version); err != nil {
		return nil, err
	}
	return version, nil
}

func resolveSectionTarget(sections []Section, index *int, title string) (int, error) {
	if index != nil {
		if *index < 0 || *index >= len(sections) {
			return 0, apierr.Validationf("section_out_of_range",
				"section index %d out of range (have %d sections)", *index, len(sections))
		}
		return *index, nil
	}
	if title != "" {
		for i, s := range sections {
			if strings.EqualFold(strings.TrimSpace(s.Title), strings.TrimSpace(title)) {
				return i, nil
			}
		}
		return 0, apierr.NotFoundf("section_not_found", "no section titled %q", title)
	}
	return 0, apierr.Validationf("section_target_required", "sectionId or sectionTitle is required")
}

func outlineFromSections(fm Frontmatter, seo SeoSnapshot, sections []Section) *Outline {
	entries := make([]OutlineEntry, len(sections))
	for i, s := range sections {
		entries[i] = OutlineEntry{Title: s.Title, Level: s.Level}
	}
	return &Outline{Entries: entries, Seo: seo, Frontmatter: fm}
}

func applyRequestedFrontmatter(fm *Frontmatter, in GenerateDraftInput) {
	if in.Title != "" {
		fm.Title = in.Title
	}
	if in.Slug != "" {
		fm.Slug = in.Slug
	}
	if in.Status != "" {
		fm.Status = in.Status
	}
	if in.ContentType != "" {
		fm.ContentType = in.ContentType
	}
	if in.PrimaryKeyword != "" {
		fm.PrimaryKeyword = in.PrimaryKeyword
	}
	if in.TargetLocale != "" {
		fm.TargetLocale = in.TargetLocale
	}
}

// hasConversationHistory counts any non-empty turn regardless of role:
// an assistant-only history still marks the conversation as grounding
// context for mode selection. Filtering down to user turns happens inside
// the intent synthesizer.
func hasConversationHistory(history []domain.ConversationMessage) bool {
	for _, m := range history {
		if strings.TrimSpace(m.Content) != "" {
			return true
		}
	}
	return false
}

func nonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
