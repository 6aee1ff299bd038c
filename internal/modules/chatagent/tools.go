package chatagent

import (
	"encoding/json"

	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

const (
	ToolGenerateContent = "generate_content"
	ToolPatchSection    = "patch_section"
)

// GenerateContentArgs are the model-supplied arguments for a
// generate_content call. Every field is optional on the wire; the executor
// validates what it actually needs.
type GenerateContentArgs struct {
	ContentID       *string  `json:"contentId"`
	SourceContentID *string  `json:"sourceContentId"`
	SourceText      *string  `json:"sourceText"`
	Transcript      *string  `json:"transcript"`
	Title           *string  `json:"title"`
	Slug            *string  `json:"slug"`
	Status          *string  `json:"status"`
	PrimaryKeyword  *string  `json:"primaryKeyword"`
	TargetLocale    *string  `json:"targetLocale"`
	ContentType     *string  `json:"contentType"`
	SystemPrompt    *string  `json:"systemPrompt"`
	Temperature     *float64 `json:"temperature"`
}

// PatchSectionArgs are the model-supplied arguments for a patch_section
// call. ContentID is the only required field.
type PatchSectionArgs struct {
	ContentID    string   `json:"contentId"`
	SectionID    *string  `json:"sectionId"`
	SectionTitle *string  `json:"sectionTitle"`
	Instructions *string  `json:"instructions"`
	Temperature  *float64 `json:"temperature"`
}

// ChatToolInvocation is a tagged union over the known tools. Exactly one
// of the payload fields is non-nil, matching Name.
type ChatToolInvocation struct {
	Name            string
	GenerateContent *GenerateContentArgs
	PatchSection    *PatchSectionArgs
}

// ParseToolCall turns a raw model tool call into a typed invocation.
// Malformed argument JSON and unknown tool names both yield nil: the
// caller treats that as "no actionable tool call", never as a failed turn.
func ParseToolCall(call *openai.ToolCall) *ChatToolInvocation {
	if call == nil || call.Function.Name == "" {
		return nil
	}

	// Models occasionally echo a discriminator field into the arguments;
	// decode through a map first so it can be dropped.
	var loose map[string]json.RawMessage
	if err := json.Unmarshal([]byte(call.Function.Arguments), &loose); err != nil {
		return nil
	}
	delete(loose, "type")
	cleaned, err := json.Marshal(loose)
	if err != nil {
		return nil
	}

	switch call.Function.Name {
	case ToolGenerateContent:
		var args GenerateContentArgs
		if err := json.Unmarshal(cleaned, &args); err != nil {
			return nil
		}
		return &ChatToolInvocation{Name: ToolGenerateContent, GenerateContent: &args}
	case ToolPatchSection:
		var args PatchSectionArgs
		if err := json.Unmarshal(cleaned, &args); err != nil {
			return nil
		}
		return &ChatToolInvocation{Name: ToolPatchSection, PatchSection: &args}
	default:
		return nil
	}
}

// ToolDefinitions returns the static schemas advertised on every turn.
func ToolDefinitions() []openai.ToolDefinition {
	nullable := func(t string) map[string]any {
		return map[string]any{"type": []string{t, "null"}}
	}
	return []openai.ToolDefinition{
		{
			Type: "function",
			Function: openai.FunctionDef{
				Name:        ToolGenerateContent,
				Description: "Generate or regenerate a full content draft from a source, a transcript, or the conversation so far.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"contentId":       nullable("string"),
						"sourceContentId": nullable("string"),
						"sourceText":      nullable("string"),
						"transcript":      nullable("string"),
						"title":           nullable("string"),
						"slug":            nullable("string"),
						"status":          nullable("string"),
						"primaryKeyword":  nullable("string"),
						"targetLocale":    nullable("string"),
						"contentType":     nullable("string"),
						"systemPrompt":    nullable("string"),
						"temperature": map[string]any{
							"type":    []string{"number", "null"},
							"minimum": 0,
							"maximum": 2,
						},
					},
					"additionalProperties": false,
				},
			},
		},
		{
			Type: "function",
			Function: openai.FunctionDef{
				Name:        ToolPatchSection,
				Description: "Regenerate a single section of an existing draft according to the user's instructions.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"contentId":    map[string]any{"type": "string"},
						"sectionId":    nullable("string"),
						"sectionTitle": nullable("string"),
						"instructions": nullable("string"),
						"temperature": map[string]any{
							"type":    []string{"number", "null"},
							"minimum": 0,
							"maximum": 2,
						},
					},
					"required":             []string{"contentId"},
					"additionalProperties": false,
				},
			},
		},
	}
}
