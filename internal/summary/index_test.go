package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/BranchManager69/codextendo/internal/oai"
)

// TestLoadIndexMissing tests that an absent index starts empty.
func TestLoadIndexMissing(t *testing.T) {
	idx, err := LoadIndex(filepath.Join(t.TempDir(), "index.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx) != 0 {
		t.Errorf("index has %d entries, want 0", len(idx))
	}
}

// TestLoadIndexCorrupt tests that unparseable or non-object content
// resets the index instead of failing the refresh.
func TestLoadIndexCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `{"a": {"session_id`},
		{"array instead of object", `[1, 2, 3]`},
		{"bare string", `"hello"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "index.json")
			if err := os.WriteFile(
				path, []byte(tc.content), 0o644,
			); err != nil {
				t.Fatal(err)
			}

			idx, err := LoadIndex(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(idx) != 0 {
				t.Errorf("index has %d entries, want 0",
					len(idx),
				)
			}
		})
	}
}

// TestIndexRoundTrip tests that records survive a write/load cycle
// with their payload fields flattened.
func TestIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.json")

	idx := Index{
		"sess-1": {
			SessionID:   "sess-1",
			GeneratedAt: "2024-03-01T10:00:00Z",
			Model:       "gpt-5",
			KeptTokens:  42,
			Digest:      "d1",
			SummaryPayload: oai.SummaryPayload{
				Summary:      "Did the thing.",
				KeyActions:   []oai.KeyAction{},
				FilesTouched: []string{"x.go"},
				Concerns:     []string{},
				FollowUp:     []string{},
			},
			SessionPath:     "/tmp/s.jsonl",
			LatestTimestamp: "2024-03-01T09:59:00Z",
			SummarizedAt:    "2024-03-01T10:00:01Z",
		},
	}

	if err := idx.Write(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, ok := loaded["sess-1"]
	if !ok {
		t.Fatal("entry missing after round trip")
	}
	if entry.Digest != "d1" || entry.Summary != "Did the thing." {
		t.Errorf("entry mismatch: %+v", entry)
	}
	if entry.SessionPath != "/tmp/s.jsonl" {
		t.Errorf("session path = %q", entry.SessionPath)
	}

	// The on-disk form keeps payload fields at the top level of each
	// entry, not nested under a payload key.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if m["sess-1"]["summary"] != "Did the thing." {
		t.Errorf("summary not flattened: %v", m["sess-1"])
	}
}
