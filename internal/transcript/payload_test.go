package transcript

import "testing"

// TestRenderPayloadKinds tests header and body rendering for every
// known payload type plus the unknown-type fallback.
func TestRenderPayloadKinds(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		wantHeader string
		wantBody   string
		wantOK     bool
	}{
		{
			name: "message concatenates chunks",
			payload: map[string]any{
				"type": "message",
				"role": "user",
				"content": []any{
					map[string]any{"text": "hello "},
					map[string]any{"text": "world"},
				},
			},
			wantHeader: "USER",
			wantBody:   "hello world",
			wantOK:     true,
		},
		{
			name: "message skips non-object chunks",
			payload: map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					"stray string",
					map[string]any{"text": "kept"},
				},
			},
			wantHeader: "ASSISTANT",
			wantBody:   "kept",
			wantOK:     true,
		},
		{
			name: "message with no text is dropped",
			payload: map[string]any{
				"type": "message",
				"role": "user",
				"content": []any{
					map[string]any{"text": "   "},
				},
			},
			wantOK: false,
		},
		{
			name: "message without role",
			payload: map[string]any{
				"type": "message",
				"content": []any{
					map[string]any{"text": "hi"},
				},
			},
			wantHeader: "UNKNOWN",
			wantBody:   "hi",
			wantOK:     true,
		},
		{
			name: "user message",
			payload: map[string]any{
				"type":    "user_message",
				"message": "  run the tests  ",
			},
			wantHeader: "USER_MESSAGE",
			wantBody:   "run the tests",
			wantOK:     true,
		},
		{
			name: "agent message",
			payload: map[string]any{
				"type":    "agent_message",
				"message": "done",
			},
			wantHeader: "AGENT_MESSAGE",
			wantBody:   "done",
			wantOK:     true,
		},
		{
			name: "agent reasoning",
			payload: map[string]any{
				"type": "agent_reasoning",
				"text": "thinking about it",
			},
			wantHeader: "AGENT_REASONING",
			wantBody:   "thinking about it",
			wantOK:     true,
		},
		{
			name: "reasoning with summary list",
			payload: map[string]any{
				"type": "reasoning",
				"summary": []any{
					map[string]any{"text": "first"},
					map[string]any{"text": "second"},
				},
			},
			wantHeader: "REASONING",
			wantBody:   "first\nsecond",
			wantOK:     true,
		},
		{
			name: "reasoning with summary object",
			payload: map[string]any{
				"type": "reasoning",
				"summary": map[string]any{
					"text": "condensed",
				},
			},
			wantHeader: "REASONING",
			wantBody:   "condensed",
			wantOK:     true,
		},
		{
			name: "reasoning encrypted placeholder",
			payload: map[string]any{
				"type":              "reasoning",
				"encrypted_content": "AAAA",
			},
			wantHeader: "REASONING",
			wantBody:   "<encrypted reasoning content>",
			wantOK:     true,
		},
		{
			name: "reasoning with nothing is dropped",
			payload: map[string]any{
				"type": "reasoning",
			},
			wantOK: false,
		},
		{
			name: "function call with json string arguments",
			payload: map[string]any{
				"type":      "function_call",
				"name":      "shell",
				"arguments": `{"command":"ls"}`,
			},
			wantHeader: "FUNCTION_CALL shell",
			wantBody:   "{\n  \"command\": \"ls\"\n}",
			wantOK:     true,
		},
		{
			name: "function call with unparsable arguments",
			payload: map[string]any{
				"type":      "function_call",
				"name":      "shell",
				"arguments": "not json",
			},
			wantHeader: "FUNCTION_CALL shell",
			wantBody:   "not json",
			wantOK:     true,
		},
		{
			name: "function call without name",
			payload: map[string]any{
				"type":      "function_call",
				"arguments": `{"a":1}`,
			},
			wantHeader: "FUNCTION_CALL",
			wantBody:   "{\n  \"a\": 1\n}",
			wantOK:     true,
		},
		{
			name: "function call output string",
			payload: map[string]any{
				"type":    "function_call_output",
				"call_id": "call_1",
				"output":  "exit 0\n",
			},
			wantHeader: "FUNCTION_OUTPUT call_1",
			wantBody:   "exit 0",
			wantOK:     true,
		},
		{
			name: "function call output object",
			payload: map[string]any{
				"type":    "function_call_output",
				"call_id": "call_2",
				"output": map[string]any{
					"stdout": "ok",
				},
			},
			wantHeader: "FUNCTION_OUTPUT call_2",
			wantBody:   "{\n  \"stdout\": \"ok\"\n}",
			wantOK:     true,
		},
		{
			name: "function call output empty",
			payload: map[string]any{
				"type":    "function_call_output",
				"call_id": "call_3",
			},
			wantOK: false,
		},
		{
			name: "token count",
			payload: map[string]any{
				"type": "token_count",
				"info": map[string]any{"total": float64(12)},
			},
			wantHeader: "TOKEN_COUNT",
			wantBody: "{\n  \"info\": {\n    \"total\": 12\n  },\n" +
				"  \"rate_limits\": null\n}",
			wantOK: true,
		},
		{
			name: "turn aborted",
			payload: map[string]any{
				"type":   "turn_aborted",
				"reason": "interrupt",
			},
			wantHeader: "TURN_ABORTED",
			wantBody:   "{\n  \"reason\": \"interrupt\"\n}",
			wantOK:     true,
		},
		{
			name: "event message",
			payload: map[string]any{
				"type": "event_msg",
				"kind": "notice",
			},
			wantHeader: "EVENT",
			wantBody:   "{\n  \"kind\": \"notice\"\n}",
			wantOK:     true,
		},
		{
			name: "unknown type keeps everything",
			payload: map[string]any{
				"type":  "mystery_event",
				"value": "x",
			},
			wantHeader: "MYSTERY_EVENT",
			wantBody:   "{\n  \"value\": \"x\"\n}",
			wantOK:     true,
		},
		{
			name:       "empty payload",
			payload:    map[string]any{},
			wantHeader: "UNKNOWN",
			wantBody:   "{}",
			wantOK:     true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			header, body, ok := renderPayload(tc.payload)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if header != tc.wantHeader {
				t.Errorf("header = %q, want %q",
					header, tc.wantHeader,
				)
			}
			if body != tc.wantBody {
				t.Errorf("body = %q, want %q",
					body, tc.wantBody,
				)
			}
		})
	}
}

// TestCanonicalJSONDeterminism tests that canonical JSON output sorts
// keys and leaves HTML-significant characters unescaped.
func TestCanonicalJSONDeterminism(t *testing.T) {
	got := canonicalJSON(map[string]any{
		"zebra": 1,
		"alpha": "<tag>",
	})
	want := "{\n  \"alpha\": \"<tag>\",\n  \"zebra\": 1\n}"
	if got != want {
		t.Errorf("canonicalJSON = %q, want %q", got, want)
	}

	if canonicalJSON(nil) != "null" {
		t.Errorf("canonicalJSON(nil) = %q, want null",
			canonicalJSON(nil),
		)
	}
}
