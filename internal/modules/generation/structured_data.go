package generation

import (
	"encoding/json"
	"strings"
)

const (
	jsonLDOpenTag  = `<script type="application/ld+json">`
	jsonLDCloseTag = `</script>`
)

// BuildStructuredData renders a schema.org Article JSON-LD script block
// from the frontmatter and SEO snapshot. Returns "" when there is nothing
// meaningful to describe, so callers can omit the block entirely rather
// than emit an empty script tag.
func BuildStructuredData(fm Frontmatter, seo SeoSnapshot, baseURL string) string {
	headline := strings.TrimSpace(fm.Title)
	if headline == "" {
		headline = strings.TrimSpace(seo.MetaTitle)
	}
	if headline == "" {
		return ""
	}

	doc := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Article",
		"headline": headline,
	}
	if d := strings.TrimSpace(fm.Description); d != "" {
		doc["description"] = d
	} else if d := strings.TrimSpace(seo.MetaDescription); d != "" {
		doc["description"] = d
	}
	if len(seo.Keywords) > 0 {
		doc["keywords"] = strings.Join(seo.Keywords, ", ")
	}
	if fm.Date != "" {
		doc["datePublished"] = fm.Date
	}
	if fm.TargetLocale != "" {
		doc["inLanguage"] = fm.TargetLocale
	}
	if baseURL != "" && fm.Slug != "" {
		doc["mainEntityOfPage"] = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(fm.Slug, "/")
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ""
	}
	return jsonLDOpenTag + "\n" + string(raw) + "\n" + jsonLDCloseTag
}
