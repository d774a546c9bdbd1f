package transcript

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTranscript writes lines to a temp .jsonl file and returns its
// path.
func writeTranscript(t *testing.T, lines string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestReadFile tests segment collection, malformed-line skipping, and
// latest-timestamp tracking over a mixed transcript.
func TestReadFile(t *testing.T) {
	lines := `{"timestamp":"2024-03-01T10:00:00Z","payload":{"type":"user_message","message":"start the build"}}
not json at all
{"payload":{"type":"message","role":"assistant","content":[{"text":"building now"}],"timestamp":"2024-03-01T10:05:00Z"}}
{"payload":{"type":"message","role":"assistant","content":[]}}
{"timestamp":"2024-03-01T09:00:00Z","payload":{"type":"turn_aborted","reason":"restart"}}
`

	tr, err := ReadFile(writeTranscript(t, lines))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tr.Segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(tr.Segments))
	}

	wantHeaders := []string{"USER_MESSAGE", "ASSISTANT", "TURN_ABORTED"}
	for i, want := range wantHeaders {
		if tr.Segments[i].Header != want {
			t.Errorf("segment %d header = %q, want %q",
				i, tr.Segments[i].Header, want,
			)
		}
	}

	if tr.Segments[0].Combined != "USER_MESSAGE:\nstart the build" {
		t.Errorf("combined = %q", tr.Segments[0].Combined)
	}

	// Latest timestamp is the max across all lines, taken from the
	// payload when present, the envelope otherwise.
	if tr.LatestTimestamp.IsNone() {
		t.Fatal("expected a latest timestamp")
	}
	want := time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)
	got := tr.LatestTimestamp.UnwrapOr(time.Time{})
	if !got.Equal(want) {
		t.Errorf("latest = %v, want %v", got, want)
	}

	if tr.Digest == "" {
		t.Error("expected non-empty digest")
	}
}

// TestReadFileDigestStable tests that rereading unchanged content
// yields the same digest.
func TestReadFileDigestStable(t *testing.T) {
	lines := `{"payload":{"type":"agent_message","message":"alpha"}}
{"payload":{"type":"agent_message","message":"beta"}}
`
	path := writeTranscript(t, lines)

	first, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if first.Digest != second.Digest {
		t.Errorf("digest changed across reads: %q vs %q",
			first.Digest, second.Digest,
		)
	}
}

// TestReadFileDigestOrderSensitive tests that reordering segments
// changes the digest.
func TestReadFileDigestOrderSensitive(t *testing.T) {
	forward := `{"payload":{"type":"agent_message","message":"alpha"}}
{"payload":{"type":"agent_message","message":"beta"}}
`
	reversed := `{"payload":{"type":"agent_message","message":"beta"}}
{"payload":{"type":"agent_message","message":"alpha"}}
`

	a, err := ReadFile(writeTranscript(t, forward))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ReadFile(writeTranscript(t, reversed))
	if err != nil {
		t.Fatal(err)
	}

	if a.Digest == b.Digest {
		t.Error("digest should depend on segment order")
	}
}

// TestReadFileDigestSeparatesHeaderFromText tests that content cannot
// slide between the header and the body without changing the digest.
func TestReadFileDigestSeparatesHeaderFromText(t *testing.T) {
	// Headers derive from the message role, so these two transcripts
	// concatenate to the same bytes while splitting differently.
	a := `{"payload":{"type":"message","role":"ab","content":[{"text":"C"}]}}
`
	b := `{"payload":{"type":"message","role":"a","content":[{"text":"BC"}]}}
`

	ta, err := ReadFile(writeTranscript(t, a))
	if err != nil {
		t.Fatal(err)
	}
	tb, err := ReadFile(writeTranscript(t, b))
	if err != nil {
		t.Fatal(err)
	}

	if ta.Digest == tb.Digest {
		t.Error("digest should separate header from text")
	}
}

// TestReadFileEmpty tests that an empty transcript is not an error.
func TestReadFileEmpty(t *testing.T) {
	tr, err := ReadFile(writeTranscript(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Segments) != 0 {
		t.Errorf("segments = %d, want 0", len(tr.Segments))
	}
	if tr.LatestTimestamp.IsSome() {
		t.Error("expected no latest timestamp")
	}
	if tr.Digest == "" {
		t.Error("empty transcript still has a digest")
	}
}

// TestReadFileMissing tests the error path for absent files.
func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestParseTimestamp tests the accepted timestamp shapes.
func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{
			name: "zulu",
			raw:  "2024-03-01T10:00:00Z",
			want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "explicit offset",
			raw:  "2024-03-01T12:00:00+02:00",
			want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "fractional seconds",
			raw:  "2024-03-01T10:00:00.500Z",
			want: time.Date(
				2024, 3, 1, 10, 0, 0,
				500*int(time.Millisecond), time.UTC,
			),
			ok: true,
		},
		{
			name: "naive treated as utc",
			raw:  "2024-03-01T10:00:00",
			want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "space separator",
			raw:  "2024-03-01 10:00:00",
			want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{name: "empty", raw: "", ok: false},
		{name: "garbage", raw: "yesterday-ish", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseTimestamp(tc.raw)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Errorf("parsed = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestDeriveSessionID tests session ID derivation from filenames.
func TestDeriveSessionID(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "rollout filename with uuid tail",
			path: "rollout-2024-03-01T10-00-00-" +
				"0195aaaa-bbbb-cccc-dddd-eeeeffff0000.jsonl",
			want: "0195aaaa-bbbb-cccc-dddd-eeeeffff0000",
		},
		{
			name: "exactly five tokens",
			path: "a-b-c-d-e.jsonl",
			want: "a-b-c-d-e",
		},
		{
			name: "fewer than five tokens",
			path: "plain-session.jsonl",
			want: "plain-session",
		},
		{
			name: "empty trailing token keeps stem",
			path: "a-b-c-d-.jsonl",
			want: "a-b-c-d-",
		},
		{
			name: "no dashes",
			path: "/some/dir/mysession.jsonl",
			want: "mysession",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveSessionID(tc.path)
			if got != tc.want {
				t.Errorf("DeriveSessionID(%q) = %q, want %q",
					tc.path, got, tc.want,
				)
			}
		})
	}
}
