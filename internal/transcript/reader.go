package transcript

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// maxLineBytes bounds a single transcript line. Tool output lines can
// run to megabytes, well past bufio's default token size.
const maxLineBytes = 16 * 1024 * 1024

// envelope is one line of a session transcript file. The payload is
// kept dynamic: its shape varies per type and unknown types must still
// render.
type envelope struct {
	Payload   map[string]any `json:"payload"`
	Timestamp string         `json:"timestamp"`
}

// Transcript is the normalized form of one session file.
type Transcript struct {
	// Segments holds the rendered entries in file order.
	Segments []Segment

	// LatestTimestamp is the maximum timestamp seen across all lines,
	// including lines that rendered to no segment.
	LatestTimestamp fn.Option[time.Time]

	// Digest is a sha256 hex digest over every rendered segment's
	// header and text, order sensitive. A NUL byte separates header
	// from text so the boundary itself is part of the hash.
	Digest string
}

// ReadFile reads a JSONL session transcript and renders it. Lines that
// are not valid JSON objects are skipped rather than failing the whole
// transcript; a transcript with no renderable content returns empty
// Segments and is not an error.
func ReadFile(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	defer f.Close()

	var (
		segments   []Segment
		latest     time.Time
		haveLatest bool
	)
	hash := sha256.New()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		var env envelope
		if err := json.Unmarshal(scanner.Bytes(), &env); err != nil {
			continue
		}

		payload := env.Payload
		if payload == nil {
			payload = map[string]any{}
		}

		rawTS := stringField(payload, "timestamp")
		if rawTS == "" {
			rawTS = env.Timestamp
		}
		ts, tsOK := parseTimestamp(rawTS)
		if tsOK && (!haveLatest || ts.After(latest)) {
			latest = ts
			haveLatest = true
		}

		header, text, ok := renderPayload(payload)
		if !ok {
			continue
		}

		hash.Write([]byte(header))
		hash.Write([]byte{0})
		hash.Write([]byte(text))

		seg := Segment{
			Header:      header,
			Text:        text,
			Combined:    header + ":\n" + text,
			PayloadType: stringField(payload, "type"),
			Timestamp:   fn.None[time.Time](),
		}
		if tsOK {
			seg.Timestamp = fn.Some(ts)
		}
		segments = append(segments, seg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript %s: %w", path, err)
	}

	latestOpt := fn.None[time.Time]()
	if haveLatest {
		latestOpt = fn.Some(latest)
	}

	return &Transcript{
		Segments:        segments,
		LatestTimestamp: latestOpt,
		Digest:          hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// parseTimestamp parses an ISO-8601 timestamp. Timestamps without a
// zone are taken as UTC. ok is false for empty or unparseable values.
func parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// DeriveSessionID derives the session identifier from a transcript
// path. Codex session filenames end in a dash-separated UUID; when the
// stem has at least five non-empty trailing dash tokens those form the
// ID, otherwise the whole stem does.
func DeriveSessionID(path string) string {
	stem := strings.TrimSuffix(
		filepath.Base(path), filepath.Ext(path),
	)

	parts := strings.Split(stem, "-")
	if len(parts) < 5 {
		return stem
	}

	tail := parts[len(parts)-5:]
	for _, part := range tail {
		if part == "" {
			return stem
		}
	}
	return strings.Join(tail, "-")
}
