// Package transcript normalizes Codex CLI session transcripts into
// prompt-ready text segments, with an order-sensitive content digest
// for change detection and token-budget trimming.
package transcript

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Segment is one rendered transcript entry.
type Segment struct {
	// Header labels the segment, e.g. "USER" or "FUNCTION_CALL shell".
	Header string

	// Text is the rendered body with surrounding whitespace removed.
	Text string

	// Combined is the prompt form: header, colon, newline, body.
	Combined string

	// PayloadType is the raw payload type discriminator, "" when the
	// payload carried none.
	PayloadType string

	// Timestamp is the payload (or envelope) timestamp when one was
	// present and parseable.
	Timestamp fn.Option[time.Time]
}

// renderPayload converts one payload object into a header/body pair.
// Unknown payload types fall back to a canonical JSON dump so nothing
// is lost. ok is false when the payload renders to no content.
func renderPayload(payload map[string]any) (header, body string, ok bool) {
	ptype, _ := payload["type"].(string)

	switch ptype {
	case "message":
		role := stringField(payload, "role")
		if role == "" {
			role = "unknown"
		}
		chunks, _ := payload["content"].([]any)
		var b strings.Builder
		for _, chunk := range chunks {
			m, isMap := chunk.(map[string]any)
			if !isMap {
				continue
			}
			b.WriteString(stringField(m, "text"))
		}
		header = strings.ToUpper(role)
		body = b.String()

	case "user_message", "agent_message":
		header = strings.ToUpper(ptype)
		body = stringField(payload, "message")

	case "agent_reasoning":
		header = "AGENT_REASONING"
		body = stringField(payload, "text")

	case "reasoning":
		header = "REASONING"
		switch summary := payload["summary"].(type) {
		case []any:
			var parts []string
			for _, item := range summary {
				m, isMap := item.(map[string]any)
				if !isMap {
					continue
				}
				parts = append(parts, stringField(m, "text"))
			}
			body = strings.Join(parts, "\n")
		case map[string]any:
			body = stringField(summary, "text")
		}
		if strings.TrimSpace(body) == "" {
			if stringField(payload, "encrypted_content") != "" {
				body = "<encrypted reasoning content>"
			}
		}

	case "function_call":
		header = strings.TrimSpace(
			"FUNCTION_CALL " + stringField(payload, "name"),
		)
		switch args := payload["arguments"].(type) {
		case string:
			// Arguments usually arrive as a JSON-encoded string;
			// reformat when they parse, pass through otherwise.
			var parsed any
			if err := json.Unmarshal([]byte(args), &parsed); err == nil {
				body = canonicalJSON(parsed)
			} else {
				body = args
			}
		default:
			body = canonicalJSON(args)
		}

	case "function_call_output":
		header = strings.TrimSpace(
			"FUNCTION_OUTPUT " + stringField(payload, "call_id"),
		)
		switch out := payload["output"].(type) {
		case nil:
			body = ""
		case string:
			body = out
		default:
			body = canonicalJSON(out)
		}

	case "token_count":
		header = "TOKEN_COUNT"
		body = canonicalJSON(map[string]any{
			"info":        payload["info"],
			"rate_limits": payload["rate_limits"],
		})

	case "turn_aborted":
		header = "TURN_ABORTED"
		body = canonicalJSON(withoutType(payload))

	case "event_msg":
		header = "EVENT"
		body = canonicalJSON(withoutType(payload))

	default:
		header = "UNKNOWN"
		if ptype != "" {
			header = strings.ToUpper(ptype)
		}
		body = canonicalJSON(withoutType(payload))
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return "", "", false
	}
	return header, body, true
}

// stringField returns the string value of key, or "" when the field is
// missing or not a string.
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// withoutType copies a payload minus its type discriminator.
func withoutType(payload map[string]any) map[string]any {
	rest := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "type" {
			continue
		}
		rest[k] = v
	}
	return rest
}

// canonicalJSON renders a value as two-space-indented JSON with sorted
// keys and no HTML escaping, so equal payloads always render equal
// text.
func canonicalJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
