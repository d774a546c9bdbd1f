package oai

import "encoding/json"

// Key action statuses enforced by the response schema.
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusPlanned    = "planned"
)

// SummaryPayload is the schema-forced summarizer output.
type SummaryPayload struct {
	// Summary is the narrative TL;DR of the session.
	Summary string `json:"summary"`

	// KeyActions are the notable work items, at most the top few.
	KeyActions []KeyAction `json:"key_actions"`

	// FilesTouched lists paths the session modified or inspected.
	FilesTouched []string `json:"files_touched"`

	// Concerns lists risks or problems the model flagged.
	Concerns []string `json:"concerns"`

	// FollowUp lists concrete next steps.
	FollowUp []string `json:"follow_up"`
}

// KeyAction is one tracked work item in a summary.
type KeyAction struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

// summarySchema is the JSON schema the model output must satisfy. The
// Responses API rejects outputs with missing keys or stray properties,
// so downstream code can rely on every field being present.
const summarySchema = `{
  "type": "object",
  "properties": {
    "summary": {"type": "string"},
    "key_actions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "status": {
            "type": "string",
            "enum": ["completed", "in_progress", "blocked", "planned"]
          }
        },
        "required": ["description", "status"],
        "additionalProperties": false
      }
    },
    "files_touched": {"type": "array", "items": {"type": "string"}},
    "concerns": {"type": "array", "items": {"type": "string"}},
    "follow_up": {"type": "array", "items": {"type": "string"}}
  },
  "required": [
    "summary",
    "key_actions",
    "files_touched",
    "concerns",
    "follow_up"
  ],
  "additionalProperties": false
}`

// request is the Responses API call body.
type request struct {
	Model           string         `json:"model"`
	Input           []inputMessage `json:"input"`
	Text            textFormat     `json:"text"`
	MaxOutputTokens int            `json:"max_output_tokens"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type inputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type textFormat struct {
	Format formatSpec `json:"format"`
}

type formatSpec struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

// response is the Responses API reply, reduced to the fields the
// summarizer reads.
type response struct {
	Status            string          `json:"status"`
	IncompleteDetails *incompleteInfo `json:"incomplete_details"`
	Output            []outputBlock   `json:"output"`
}

type incompleteInfo struct {
	Reason string `json:"reason"`
}

type outputBlock struct {
	Content []outputContent `json:"content"`
}

type outputContent struct {
	Type string          `json:"type"`
	JSON json.RawMessage `json:"json"`
	Text string          `json:"text"`
}
