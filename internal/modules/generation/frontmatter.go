package generation

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// RenderFrontmatterBlock serializes the frontmatter record as a YAML block
// fenced with "---" lines.
func RenderFrontmatterBlock(fm Frontmatter) (string, error) {
	body, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return frontmatterDelimiter + "\n" + strings.TrimSpace(string(body)) + "\n" + frontmatterDelimiter, nil
}

// ParseFrontmatterBlock reads a YAML frontmatter block back into the
// record. The input may be the fenced block or bare YAML.
func ParseFrontmatterBlock(block string) (Frontmatter, error) {
	var fm Frontmatter
	body := strings.TrimSpace(block)
	if strings.HasPrefix(body, frontmatterDelimiter) {
		body = strings.TrimPrefix(body, frontmatterDelimiter)
		if i := strings.LastIndex(body, frontmatterDelimiter); i >= 0 {
			body = body[:i]
		}
	}
	if err := yaml.Unmarshal([]byte(body), &fm); err != nil {
		return Frontmatter{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, nil
}
