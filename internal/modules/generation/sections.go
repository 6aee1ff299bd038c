package generation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const sectionSystemPrompt = `You write one section of a long-form document. Reply with the section body in markdown. Do not repeat the section heading, do not add frontmatter, do not wrap the reply in code fences.`

const defaultSectionParallelism = 4

// SectionResult reports a section-generation pass. Failures are data, not
// errors: a failed entry never aborts its siblings, and callers retry the
// failed indices selectively.
type SectionResult struct {
	Sections []Section
	Failed   []FailedSection
}

// GenerateSectionsFromOutline fills in bodies for every outline entry,
// preserving outline order in the output. Entries run concurrently with a
// bounded worker count; a per-entry failure is recorded and skipped.
func (p *Planner) GenerateSectionsFromOutline(ctx context.Context, outline *Outline, in OutlineInput) (*SectionResult, error) {
	if outline == nil || len(outline.Entries) == 0 {
		return &SectionResult{}, nil
	}

	bodies := make([]string, len(outline.Entries))
	failures := make([]*FailedSection, len(outline.Entries))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultSectionParallelism)
	for i := range outline.Entries {
		i := i
		g.Go(func() error {
			entry := outline.Entries[i]
			body, err := p.generateSectionBody(gctx, outline, entry, in)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[i] = &FailedSection{Index: i, Title: entry.Title, Error: err.Error()}
				return nil
			}
			bodies[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SectionResult{}
	for i, entry := range outline.Entries {
		if failures[i] != nil {
			result.Failed = append(result.Failed, *failures[i])
			continue
		}
		result.Sections = append(result.Sections, Section{
			Index: i,
			Title: entry.Title,
			Level: clampLevel(entry.Level),
			Body:  bodies[i],
		})
	}
	if len(result.Failed) > 0 {
		p.log.Warn("section generation partially failed",
			"failed", len(result.Failed), "succeeded", len(result.Sections))
	}
	return result, nil
}

// RegenerateSection re-runs body generation for one outline entry, used by
// patch operations that touch a single section.
func (p *Planner) RegenerateSection(ctx context.Context, outline *Outline, index int, instructions string, in OutlineInput) (*Section, error) {
	if outline == nil || index < 0 || index >= len(outline.Entries) {
		return nil, fmt.Errorf("outline index %d out of range", index)
	}
	entry := outline.Entries[index]
	if instructions != "" {
		in.ExtraInstructions = instructions
	}
	body, err := p.generateSectionBody(ctx, outline, entry, in)
	if err != nil {
		return nil, err
	}
	return &Section{
		Index: index,
		Title: entry.Title,
		Level: clampLevel(entry.Level),
		Body:  body,
	}, nil
}

func (p *Planner) generateSectionBody(ctx context.Context, outline *Outline, entry OutlineEntry, in OutlineInput) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", outline.Frontmatter.Title)
	b.WriteString("Full outline:\n")
	for _, e := range outline.Entries {
		fmt.Fprintf(&b, "- %s\n", e.Title)
	}
	fmt.Fprintf(&b, "\nWrite the section titled %q.", entry.Title)
	if entry.Notes != "" {
		fmt.Fprintf(&b, " Notes: %s", entry.Notes)
	}
	b.WriteString("\n")
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

	body, err := p.complete(ctx, sectionSystemPrompt, b.String(), in.Temperature)
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("section %q resolved to an empty body", entry.Title)
	}
	return body, nil
}

// sortSectionsByIndex orders sections ascending by index. The sort is
// stable so duplicate indices (which should not occur) render in input
// order instead of crashing or flapping.
func sortSectionsByIndex(sections []Section) []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
