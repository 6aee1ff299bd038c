package generation

import (
	"strings"
	"testing"
)

func TestAssembleMarkdownFromSections(t *testing.T) {
	fm := Frontmatter{Title: "Baking Basics"}
	sections := []Section{
		{Index: 0, Title: "A", Level: 2, Body: "x"},
		{Index: 1, Title: "B", Level: 3, Body: "y"},
	}

	markdown, rendered := AssembleMarkdownFromSections(fm, sections)

	if !strings.HasPrefix(markdown, "# Baking Basics\n\n") {
		t.Errorf("document should open with the H1 title, got %q", markdown[:30])
	}
	if !strings.HasSuffix(markdown, "\n") || strings.HasSuffix(markdown, "\n\n") {
		t.Errorf("document should end with exactly one newline, got %q", markdown[len(markdown)-3:])
	}
	if !strings.Contains(markdown, "## A\n\nx") {
		t.Errorf("level-2 section not rendered, markdown:\n%s", markdown)
	}
	if !strings.Contains(markdown, "### B\n\ny") {
		t.Errorf("level-3 section not rendered, markdown:\n%s", markdown)
	}

	if len(rendered) != 2 {
		t.Fatalf("got %d rendered sections, want 2", len(rendered))
	}
	prevEnd := -1
	for i, s := range rendered {
		if s.StartOffset >= s.EndOffset {
			t.Errorf("section %d offsets [%d,%d) not increasing", i, s.StartOffset, s.EndOffset)
		}
		if s.StartOffset <= prevEnd {
			t.Errorf("section %d start %d overlaps previous end %d", i, s.StartOffset, prevEnd)
		}
		prevEnd = s.EndOffset
		got := markdown[s.StartOffset:s.EndOffset]
		want := strings.Repeat("#", s.Level) + " " + s.Title + "\n\n" + s.Body
		if got != want {
			t.Errorf("section %d offsets select %q, want %q", i, got, want)
		}
	}
}

func TestAssembleMarkdownSortsByIndex(t *testing.T) {
	fm := Frontmatter{Title: "T"}
	sections := []Section{
		{Index: 2, Title: "Last", Level: 2, Body: "c"},
		{Index: 0, Title: "First", Level: 2, Body: "a"},
		{Index: 1, Title: "Middle", Level: 2, Body: "b"},
	}
	markdown, _ := AssembleMarkdownFromSections(fm, sections)

	first := strings.Index(markdown, "## First")
	middle := strings.Index(markdown, "## Middle")
	last := strings.Index(markdown, "## Last")
	if !(first < middle && middle < last) {
		t.Errorf("sections out of order: first=%d middle=%d last=%d", first, middle, last)
	}
}

func TestAssembleMarkdownClampsHeadingLevel(t *testing.T) {
	fm := Frontmatter{Title: "T"}
	markdown, _ := AssembleMarkdownFromSections(fm, []Section{
		{Index: 0, Title: "Shallow", Level: 1, Body: "a"},
		{Index: 1, Title: "Deep", Level: 9, Body: "b"},
	})
	if !strings.Contains(markdown, "## Shallow") {
		t.Errorf("level 1 should clamp to 2:\n%s", markdown)
	}
	if !strings.Contains(markdown, "###### Deep") {
		t.Errorf("level 9 should clamp to 6:\n%s", markdown)
	}
}

func TestAssembleMarkdownSkipsEmptySections(t *testing.T) {
	fm := Frontmatter{Title: "T"}
	markdown, rendered := AssembleMarkdownFromSections(fm, []Section{
		{Index: 0, Title: "", Level: 2, Body: "   "},
		{Index: 1, Title: "Real", Level: 2, Body: "body"},
	})
	if strings.Contains(markdown, "##  ") {
		t.Errorf("empty section leaked into markdown:\n%s", markdown)
	}
	if len(rendered) != 2 {
		t.Fatalf("rendered set should keep all inputs, got %d", len(rendered))
	}
	if rendered[0].StartOffset != 0 || rendered[0].EndOffset != 0 {
		t.Errorf("empty section should carry zero offsets, got [%d,%d)",
			rendered[0].StartOffset, rendered[0].EndOffset)
	}
}
