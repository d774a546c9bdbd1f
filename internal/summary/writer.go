package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/BranchManager69/codextendo/internal/oai"
)

// Writer renders summary artifacts into the summary directory: a JSON
// record, a Markdown document, an append-only history file, and
// optionally a standalone HTML page.
type Writer struct {
	dir  string
	html bool
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string, writeHTML bool) *Writer {
	return &Writer{dir: dir, html: writeHTML}
}

// ArtifactPaths locates the files written for one summary.
type ArtifactPaths struct {
	JSON     string
	Markdown string

	// HTML is "" unless HTML rendering is enabled.
	HTML string
}

// WriteRecord writes the JSON record and rendered Markdown for a
// summary, replacing any previous artifacts for the session.
func (w *Writer) WriteRecord(record Record) (ArtifactPaths, error) {
	var paths ArtifactPaths

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return paths, fmt.Errorf("create summary dir: %w", err)
	}

	data, err := marshalRecord(record)
	if err != nil {
		return paths, fmt.Errorf("marshal record: %w", err)
	}

	paths.JSON = filepath.Join(w.dir, record.SessionID+".json")
	if err := os.WriteFile(paths.JSON, data, 0o644); err != nil {
		return paths, fmt.Errorf("write summary json: %w", err)
	}

	md := renderMarkdown(record)
	paths.Markdown = filepath.Join(w.dir, record.SessionID+".md")
	if err := os.WriteFile(
		paths.Markdown, []byte(md), 0o644,
	); err != nil {
		return paths, fmt.Errorf("write summary markdown: %w", err)
	}

	if w.html {
		page, err := renderHTML("Summary for "+record.SessionID, md)
		if err != nil {
			return paths, fmt.Errorf("render summary html: %w", err)
		}
		paths.HTML = filepath.Join(w.dir, record.SessionID+".html")
		if err := os.WriteFile(
			paths.HTML, []byte(page), 0o644,
		); err != nil {
			return paths, fmt.Errorf("write summary html: %w", err)
		}
	}

	return paths, nil
}

// AppendHistory appends a compact entry for this generation to the
// session's history file and returns the file's path.
func (w *Writer) AppendHistory(record Record) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create summary dir: %w", err)
	}

	path := filepath.Join(w.dir, record.SessionID+".history.md")

	f, err := os.OpenFile(
		path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644,
	)
	if err != nil {
		return "", fmt.Errorf("open history %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(renderHistoryEntry(record)); err != nil {
		return "", fmt.Errorf("append history: %w", err)
	}

	return path, nil
}

// marshalRecord encodes a record as two-space-indented JSON without
// HTML escaping, matching the index encoding.
func marshalRecord(record Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// renderMarkdown builds the human-readable summary document.
func renderMarkdown(record Record) string {
	lines := []string{
		"# Summary for " + record.SessionID,
		"Generated: " + record.GeneratedAt,
	}
	if record.Label != "" {
		lines = append(lines, "Label: "+record.Label)
	}
	lines = append(lines, "")

	if text := strings.TrimSpace(record.Summary); text != "" {
		lines = append(lines, "## TL;DR", text, "")
	}

	if len(record.KeyActions) > 0 {
		lines = append(lines, "## Key Actions")
		for _, action := range record.KeyActions {
			status := action.Status
			if status == "" {
				status = "unknown"
			}
			lines = append(lines, fmt.Sprintf(
				"- **%s** – %s",
				status, strings.TrimSpace(action.Description),
			))
		}
		lines = append(lines, "")
	}

	if len(record.FilesTouched) > 0 {
		lines = append(lines, "## Files Touched")
		for _, path := range record.FilesTouched {
			lines = append(lines, fmt.Sprintf("- `%s`", path))
		}
		lines = append(lines, "")
	}

	if len(record.Concerns) > 0 {
		lines = append(lines, "## Concerns / Risks")
		for _, concern := range record.Concerns {
			lines = append(lines, "- "+concern)
		}
		lines = append(lines, "")
	}

	if len(record.FollowUp) > 0 {
		lines = append(lines, "## Follow-up / TODO")
		for _, item := range record.FollowUp {
			lines = append(lines, "- "+item)
		}
		lines = append(lines, "")
	}

	if record.Truncated {
		lines = append(lines, "_Note: Transcript truncated to the "+
			"most recent portion for summarization._")
	}

	return strings.Join(lines, "\n")
}

// renderHistoryEntry builds one append-only history block.
func renderHistoryEntry(record Record) string {
	label := record.Label
	if label == "" {
		label = "—"
	}
	truncated := "no"
	if record.Truncated {
		truncated = "yes"
	}

	lines := []string{
		"",
		"---",
		fmt.Sprintf("### %s · %s", record.GeneratedAt, record.Model),
		"Label: " + label,
		fmt.Sprintf("Tokens kept: %d", record.KeptTokens),
		"Transcript truncated: " + truncated,
		"",
	}

	if text := strings.TrimSpace(record.Summary); text != "" {
		lines = append(lines, "Summary:", text, "")
	}

	if len(record.KeyActions) > 0 {
		lines = append(lines, "Key Actions (top):")
		for _, action := range topActions(record.KeyActions, 5) {
			status := action.Status
			if status == "" {
				status = "unknown"
			}
			lines = append(lines, fmt.Sprintf(
				"- %s: %s",
				status, strings.TrimSpace(action.Description),
			))
		}
		lines = append(lines, "")
	}

	if len(record.Concerns) > 0 {
		lines = append(lines, "Concerns:")
		for _, concern := range topStrings(record.Concerns, 5) {
			lines = append(lines, "- "+concern)
		}
		lines = append(lines, "")
	}

	if len(record.FollowUp) > 0 {
		lines = append(lines, "Follow-up:")
		for _, item := range topStrings(record.FollowUp, 5) {
			lines = append(lines, "- "+item)
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// renderHTML converts the Markdown summary into a minimal standalone
// page.
func renderHTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", err
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	page.WriteString("<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return page.String(), nil
}

func topActions(actions []oai.KeyAction, n int) []oai.KeyAction {
	if len(actions) > n {
		return actions[:n]
	}
	return actions
}

func topStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
