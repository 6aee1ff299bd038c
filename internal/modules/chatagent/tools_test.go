package chatagent

import (
	"testing"

	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

func call(name, args string) *openai.ToolCall {
	return &openai.ToolCall{
		ID:   "call_1",
		Type: "function",
		Function: openai.ToolCallFunction{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestParseToolCallGenerateContent(t *testing.T) {
	inv := ParseToolCall(call(ToolGenerateContent, `{"contentId":null,"title":"Foo"}`))
	if inv == nil {
		t.Fatal("expected an invocation")
	}
	if inv.Name != ToolGenerateContent || inv.GenerateContent == nil {
		t.Fatalf("wrong union arm: %+v", inv)
	}
	if inv.PatchSection != nil {
		t.Error("patch arm should be nil for a generate call")
	}
	args := inv.GenerateContent
	if args.ContentID != nil {
		t.Errorf("contentId should stay nil, got %v", *args.ContentID)
	}
	if args.Title == nil || *args.Title != "Foo" {
		t.Errorf("title not carried through: %+v", args.Title)
	}
}

func TestParseToolCallPatchSection(t *testing.T) {
	inv := ParseToolCall(call(ToolPatchSection,
		`{"contentId":"3e4f6f6e-0000-0000-0000-000000000001","sectionTitle":"Intro","instructions":"shorter"}`))
	if inv == nil {
		t.Fatal("expected an invocation")
	}
	if inv.Name != ToolPatchSection || inv.PatchSection == nil {
		t.Fatalf("wrong union arm: %+v", inv)
	}
	if inv.PatchSection.ContentID == "" {
		t.Error("required contentId missing")
	}
	if inv.PatchSection.SectionTitle == nil || *inv.PatchSection.SectionTitle != "Intro" {
		t.Errorf("sectionTitle not carried through: %+v", inv.PatchSection.SectionTitle)
	}
}

func TestParseToolCallMalformedJSON(t *testing.T) {
	if inv := ParseToolCall(call(ToolGenerateContent, `{"title": "Foo`)); inv != nil {
		t.Errorf("malformed arguments should yield nil, got %+v", inv)
	}
}

func TestParseToolCallUnknownName(t *testing.T) {
	if inv := ParseToolCall(call("delete_everything", `{}`)); inv != nil {
		t.Errorf("unknown tool should yield nil, got %+v", inv)
	}
}

func TestParseToolCallNilInput(t *testing.T) {
	if inv := ParseToolCall(nil); inv != nil {
		t.Errorf("nil call should yield nil, got %+v", inv)
	}
}

func TestParseToolCallDropsSentinelField(t *testing.T) {
	inv := ParseToolCall(call(ToolGenerateContent, `{"type":"generate_content","title":"Foo"}`))
	if inv == nil {
		t.Fatal("sentinel field should be dropped, not fail the parse")
	}
	if inv.GenerateContent.Title == nil || *inv.GenerateContent.Title != "Foo" {
		t.Errorf("title lost during sanitization: %+v", inv.GenerateContent)
	}
}

func TestToolDefinitionsAdvertiseBothTools(t *testing.T) {
	defs := ToolDefinitions()
	if len(defs) != 2 {
		t.Fatalf("got %d tool definitions, want 2", len(defs))
	}
	names := map[string]bool{}
	for _, d := range defs {
		if d.Type != "function" {
			t.Errorf("tool %q has type %q, want function", d.Function.Name, d.Type)
		}
		names[d.Function.Name] = true
	}
	if !names[ToolGenerateContent] || !names[ToolPatchSection] {
		t.Errorf("missing tool names: %v", names)
	}
}
