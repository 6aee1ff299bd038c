package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

const outlineSystemPrompt = `You plan long-form content. Given source material and/or a description of user intent, reply with ONLY a JSON object of the shape:
{"outline":[{"title":string,"level":2-3,"notes":string}],"seo":{"metaTitle":string,"metaDescription":string,"keywords":[string]},"frontmatter":{"title":string,"slug":string,"description":string,"status":"draft"}}
Plan 4-8 sections. Levels start at 2 (the document title is rendered separately). No prose outside the JSON.`

// OutlineInput is the effective context handed to the planner; which fields
// are populated depends on the generation mode.
type OutlineInput struct {
	Mode                Mode
	Title               string
	ContentType         string
	PrimaryKeyword      string
	TargetLocale        string
	SourceExcerpts      []string
	ConversationContext string
	ExtraInstructions   string
	Temperature         *float64
}

// Planner produces outlines and fills them in section by section.
type Planner struct {
	ai  openai.Client
	log *logger.Logger
}

func NewPlanner(ai openai.Client, log *logger.Logger) *Planner {
	return &Planner{ai: ai, log: log.With("service", "Planner")}
}

// GenerateContentOutline asks the model for a section plan. Completion or
// parse failures surface as dependency errors; there is no local fallback
// for planning.
func (p *Planner) GenerateContentOutline(ctx context.Context, in OutlineInput) (*Outline, error) {
	user := buildOutlineUserPrompt(in)

	raw, err := p.complete(ctx, outlineSystemPrompt, user, in.Temperature)
	if err != nil {
		return nil, apierr.Dependency("outline_generation_failed", err)
	}

	var outline Outline
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &outline); err != nil {
		return nil, apierr.Dependency("outline_parse_failed",
			fmt.Errorf("outline response was not valid JSON: %w", err))
	}
	if len(outline.Entries) == 0 {
		return nil, apierr.Dependency("outline_empty",
			fmt.Errorf("planner returned no sections"))
	}

	for i := range outline.Entries {
		outline.Entries[i].Title = strings.TrimSpace(outline.Entries[i].Title)
		outline.Entries[i].Level = clampLevel(outline.Entries[i].Level)
	}
	if strings.TrimSpace(outline.Frontmatter.Title) == "" {
		outline.Frontmatter.Title = in.Title
	}
	if outline.Frontmatter.Status == "" {
		outline.Frontmatter.Status = "draft"
	}
	if outline.Frontmatter.ContentType == "" {
		outline.Frontmatter.ContentType = in.ContentType
	}
	if outline.Frontmatter.PrimaryKeyword == "" {
		outline.Frontmatter.PrimaryKeyword = in.PrimaryKeyword
	}
	if outline.Frontmatter.TargetLocale == "" {
		outline.Frontmatter.TargetLocale = in.TargetLocale
	}

	p.log.Info("outline generated", "sections", len(outline.Entries), "mode", string(in.Mode))
	return &outline, nil
}

func (p *Planner) complete(ctx context.Context, system, user string, temperature *float64) (string, error) {
	res, err := p.ai.Complete(ctx, openai.CompletionRequest{
		Messages: []openai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func buildOutlineUserPrompt(in OutlineInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mode: %s\n", in.Mode)
	if in.Title != "" {
		fmt.Fprintf(&b, "Working title: %s\n", in.Title)
	}
	if in.ContentType != "" {
		fmt.Fprintf(&b, "Content type: %s\n", in.ContentType)
	}
	if in.PrimaryKeyword != "" {
		fmt.Fprintf(&b, "Primary keyword: %s\n", in.PrimaryKeyword)
	}
	if in.TargetLocale != "" {
		fmt.Fprintf(&b, "Target locale: %s\n", in.TargetLocale)
	}
	if in.ConversationContext != "" && in.ConversationContext != NoIntentSentinel {
		fmt.Fprintf(&b, "\nUser intent:\n%s\n", in.ConversationContext)
	}
	if len(in.SourceExcerpts) > 0 {
		b.WriteString("\nSource material:\n")
		for i, excerpt := range in.SourceExcerpts {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, excerpt)
		}
	}
	if in.ExtraInstructions != "" {
		fmt.Fprintf(&b, "\nAdditional instructions:\n%s\n", in.ExtraInstructions)
	}
	return b.String()
}

// extractJSONObject pulls the outermost {...} out of a completion that may
// be wrapped in markdown fences or stray prose.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
