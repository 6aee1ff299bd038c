package generation

// Frontmatter is the structured metadata prepended to a rendered document.
type Frontmatter struct {
	Title          string `yaml:"title" json:"title"`
	Slug           string `yaml:"slug,omitempty" json:"slug,omitempty"`
	Description    string `yaml:"description,omitempty" json:"description,omitempty"`
	Status         string `yaml:"status,omitempty" json:"status,omitempty"`
	ContentType    string `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	PrimaryKeyword string `yaml:"primaryKeyword,omitempty" json:"primaryKeyword,omitempty"`
	TargetLocale   string `yaml:"targetLocale,omitempty" json:"targetLocale,omitempty"`
	Date           string `yaml:"date,omitempty" json:"date,omitempty"`
}

// SeoSnapshot captures the SEO fields planned alongside the outline.
type SeoSnapshot struct {
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	CanonicalPath   string   `json:"canonicalPath,omitempty"`
}

// OutlineEntry is one planned section before body generation.
type OutlineEntry struct {
	Title string `json:"title"`
	Level int    `json:"level"`
	Notes string `json:"notes,omitempty"`
}

// Outline is the planner's output: section skeleton plus metadata.
type Outline struct {
	Entries     []OutlineEntry `json:"outline"`
	Seo         SeoSnapshot    `json:"seo"`
	Frontmatter Frontmatter    `json:"frontmatter"`
}

// Section is a generated document section. Offsets are zero until the
// assembler computes them for a specific render.
type Section struct {
	Index       int    `json:"index"`
	Title       string `json:"title,omitempty"`
	Level       int    `json:"level"`
	Body        string `json:"body"`
	StartOffset int    `json:"startOffset,omitempty"`
	EndOffset   int    `json:"endOffset,omitempty"`
}

// FailedSection identifies an outline entry whose body generation failed.
type FailedSection struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Error string `json:"error"`
}

func clampLevel(level int) int {
	if level < 2 {
		return 2
	}
	if level > 6 {
		return 6
	}
	return level
}
