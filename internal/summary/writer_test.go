package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BranchManager69/codextendo/internal/oai"
)

func sampleRecord() Record {
	return Record{
		SessionID:   "sess-1",
		Label:       "infra",
		GeneratedAt: "2024-03-01T10:00:00Z",
		Model:       "gpt-5",
		Truncated:   true,
		KeptTokens:  321,
		Digest:      "abc123",
		SummaryPayload: oai.SummaryPayload{
			Summary: "Moved service configs into one place.",
			KeyActions: []oai.KeyAction{
				{
					Description: "Consolidated config files",
					Status:      oai.StatusCompleted,
				},
				{
					Description: "Migrate staging",
					Status:      oai.StatusPlanned,
				},
			},
			FilesTouched: []string{"config/app.yaml"},
			Concerns:     []string{"staging still unmigrated"},
			FollowUp:     []string{"migrate staging next week"},
		},
	}
}

// TestRenderMarkdown tests the full Markdown document layout.
func TestRenderMarkdown(t *testing.T) {
	got := renderMarkdown(sampleRecord())

	want := strings.Join([]string{
		"# Summary for sess-1",
		"Generated: 2024-03-01T10:00:00Z",
		"Label: infra",
		"",
		"## TL;DR",
		"Moved service configs into one place.",
		"",
		"## Key Actions",
		"- **completed** – Consolidated config files",
		"- **planned** – Migrate staging",
		"",
		"## Files Touched",
		"- `config/app.yaml`",
		"",
		"## Concerns / Risks",
		"- staging still unmigrated",
		"",
		"## Follow-up / TODO",
		"- migrate staging next week",
		"",
		"_Note: Transcript truncated to the most recent portion " +
			"for summarization._",
	}, "\n")

	if got != want {
		t.Errorf("markdown mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestRenderMarkdownSkipsEmptySections tests that empty payload parts
// produce no section headers.
func TestRenderMarkdownSkipsEmptySections(t *testing.T) {
	record := Record{
		SessionID:   "sess-2",
		GeneratedAt: "2024-03-01T10:00:00Z",
		SummaryPayload: oai.SummaryPayload{
			Summary: "Quiet session.",
		},
	}

	got := renderMarkdown(record)

	for _, banned := range []string{
		"## Key Actions",
		"## Files Touched",
		"## Concerns",
		"## Follow-up",
		"Label:",
		"_Note:",
	} {
		if strings.Contains(got, banned) {
			t.Errorf("markdown should not contain %q:\n%s",
				banned, got,
			)
		}
	}
	if !strings.Contains(got, "## TL;DR") {
		t.Error("markdown missing TL;DR section")
	}
}

// TestWriteRecordArtifacts tests the JSON artifact contents and that
// bookkeeping fields stay out of it.
func TestWriteRecordArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, false)

	record := sampleRecord()
	paths, err := w.WriteRecord(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if paths.JSON != filepath.Join(dir, "sess-1.json") {
		t.Errorf("json path = %q", paths.JSON)
	}
	if paths.HTML != "" {
		t.Errorf("html path = %q, want empty", paths.HTML)
	}

	data, err := os.ReadFile(paths.JSON)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("artifact is not valid json: %v", err)
	}

	// Embedded payload fields are flattened to the top level.
	if m["summary"] != "Moved service configs into one place." {
		t.Errorf("summary = %v", m["summary"])
	}
	if m["session_id"] != "sess-1" {
		t.Errorf("session_id = %v", m["session_id"])
	}
	if m["kept_tokens"] != float64(321) {
		t.Errorf("kept_tokens = %v", m["kept_tokens"])
	}

	for _, absent := range []string{
		"session_path", "latest_timestamp", "history_path",
		"summarized_at", "token_counter",
	} {
		if _, ok := m[absent]; ok {
			t.Errorf("artifact should not carry %q", absent)
		}
	}

	md, err := os.ReadFile(paths.Markdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(md), "# Summary for sess-1\n") {
		t.Errorf("markdown artifact mismatch: %q", string(md)[:40])
	}
}

// TestWriteRecordHTML tests the opt-in HTML rendering.
func TestWriteRecordHTML(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, true)

	paths, err := w.WriteRecord(sampleRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths.HTML == "" {
		t.Fatal("expected an html artifact")
	}

	page, err := os.ReadFile(paths.HTML)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Summary for sess-1</title>",
		"<h1",
		"Moved service configs into one place.",
	} {
		if !strings.Contains(string(page), want) {
			t.Errorf("html missing %q", want)
		}
	}
}

// TestAppendHistory tests that history entries accumulate in order.
func TestAppendHistory(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, false)

	record := sampleRecord()
	record.HistoryPath = ""

	first, err := w.AppendHistory(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record.GeneratedAt = "2024-03-02T09:00:00Z"
	second, err := w.AppendHistory(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("history path changed: %q vs %q", first, second)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if got := strings.Count(content, "\n---\n"); got != 2 {
		t.Errorf("history separators = %d, want 2", got)
	}
	if !strings.Contains(content, "### 2024-03-01T10:00:00Z · gpt-5") {
		t.Error("history missing first generation header")
	}
	if !strings.Contains(content, "### 2024-03-02T09:00:00Z · gpt-5") {
		t.Error("history missing second generation header")
	}
	if !strings.Contains(content, "Tokens kept: 321") {
		t.Error("history missing token count")
	}
	if !strings.Contains(content, "Transcript truncated: yes") {
		t.Error("history missing truncation line")
	}
}

// TestAppendHistoryCapsLists tests the top-5 cut on list sections.
func TestAppendHistoryCapsLists(t *testing.T) {
	record := Record{
		SessionID:   "sess-3",
		GeneratedAt: "2024-03-01T10:00:00Z",
		Model:       "gpt-5",
	}
	for i := 0; i < 8; i++ {
		record.Concerns = append(
			record.Concerns, "concern-"+string(rune('a'+i)),
		)
	}

	entry := renderHistoryEntry(record)

	if got := strings.Count(entry, "- concern-"); got != 5 {
		t.Errorf("concerns listed = %d, want 5", got)
	}
	// Missing label renders as an em dash placeholder.
	if !strings.Contains(entry, "Label: —") {
		t.Error("missing label placeholder")
	}
}
