package generation

import (
	"strings"
)

// EnrichInput carries everything needed to wrap raw markdown with its
// metadata envelope.
type EnrichInput struct {
	Markdown    string
	Frontmatter Frontmatter
	Seo         SeoSnapshot
	BaseURL     string
}

// EnrichMarkdownWithMetadata prepends a YAML frontmatter block and, when
// one can be built, a JSON-LD script block to the markdown body. Input
// that was already enriched is unwrapped first, so enriching twice never
// double-wraps.
func EnrichMarkdownWithMetadata(in EnrichInput) (string, error) {
	raw := ExtractMarkdownFromEnrichedMdx(in.Markdown)

	fmBlock, err := RenderFrontmatterBlock(in.Frontmatter)
	if err != nil {
		return "", err
	}

	parts := []string{fmBlock}
	if jsonLD := BuildStructuredData(in.Frontmatter, in.Seo, in.BaseURL); jsonLD != "" {
		parts = append(parts, jsonLD)
	}
	parts = append(parts, raw)
	return strings.Join(parts, "\n\n"), nil
}

// ExtractMarkdownFromEnrichedMdx strips the frontmatter and JSON-LD
// envelope, returning the raw markdown. Input that was never enriched, or
// that is structurally malformed, comes back unchanged.
func ExtractMarkdownFromEnrichedMdx(enriched string) string {
	if !strings.HasPrefix(enriched, frontmatterDelimiter) {
		return enriched
	}

	// Close delimiter search starts past the opening fence so a "---" on
	// the first line is not matched against itself.
	closeIdx := strings.Index(enriched[3:], "\n"+frontmatterDelimiter)
	if closeIdx < 0 {
		return enriched
	}
	rest := enriched[3+closeIdx+1+len(frontmatterDelimiter):]
	rest = strings.TrimLeft(rest, "\n")

	open := strings.Index(rest, jsonLDOpenTag)
	if open >= 0 {
		if close := strings.Index(rest[open:], jsonLDCloseTag); close >= 0 {
			before := strings.TrimSpace(rest[:open])
			after := strings.TrimSpace(rest[open+close+len(jsonLDCloseTag):])
			switch {
			case before == "":
				rest = after
			case after == "":
				rest = before
			default:
				rest = before + "\n\n" + after
			}
		}
	}
	return strings.TrimSpace(rest) + documentTrailer(enriched)
}

// documentTrailer preserves a trailing newline if the enriched input had
// one, keeping the round trip byte-exact for assembler output.
func documentTrailer(s string) string {
	if strings.HasSuffix(s, "\n") {
		return "\n"
	}
	return ""
}
