package generation

import (
	"strings"
)

// AssembleMarkdownFromSections renders the full document from frontmatter
// and sections. Sections are rendered ascending by index; each returned
// section carries the byte offsets of its block inside the final markdown.
// Offsets are render artifacts recomputed on every call and never stored
// as truth.
func AssembleMarkdownFromSections(fm Frontmatter, sections []Section) (string, []Section) {
	var doc strings.Builder
	title := strings.TrimSpace(fm.Title)
	if title != "" {
		doc.WriteString("# " + title + "\n\n")
	}

	ordered := sortSectionsByIndex(sections)
	out := make([]Section, 0, len(ordered))
	for _, s := range ordered {
		var parts []string
		if t := strings.TrimSpace(s.Title); t != "" {
			parts = append(parts, strings.Repeat("#", clampLevel(s.Level))+" "+t)
		}
		if body := strings.TrimSpace(s.Body); body != "" {
			parts = append(parts, body)
		}
		if len(parts) == 0 {
			out = append(out, s)
			continue
		}
		block := strings.Join(parts, "\n\n")
		s.StartOffset = doc.Len()
		s.EndOffset = s.StartOffset + len(block)
		doc.WriteString(block + "\n\n")
		out = append(out, s)
	}

	markdown := strings.TrimSpace(doc.String()) + "\n"
	return markdown, out
}
