package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"
)

// TestTrimInvariants verifies the structural guarantees of Trim over
// arbitrary transcripts and budgets.
func TestTrimInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numSegments := rapid.IntRange(1, 40).Draw(t, "numSegments")

		segs := make([]Segment, numSegments)
		for i := range segs {
			body := rapid.StringMatching(`[a-z ]{1,200}`).
				Draw(t, fmt.Sprintf("body%d", i))
			segs[i] = Segment{
				Header:   fmt.Sprintf("SEG_%d", i),
				Text:     body,
				Combined: fmt.Sprintf("SEG_%d:\n%s", i, body),
			}
		}

		maxTokens := rapid.IntRange(-5, 300).Draw(t, "maxTokens")

		counts := make([]int, numSegments)
		total := 0
		for i, seg := range segs {
			counts[i] = byLength.Count(seg.Combined)
			total += counts[i]
		}

		kept, truncated, keptTokens := Trim(segs, maxTokens, byLength)

		// PROPERTY: Non-empty input always keeps at least one segment.
		if len(kept) == 0 {
			t.Fatal("trim dropped every segment")
		}

		// PROPERTY: The kept segments are exactly the input suffix.
		offset := len(segs) - len(kept)
		for i := range kept {
			if kept[i].Header != segs[offset+i].Header {
				t.Fatalf("kept[%d] = %q, not the input suffix",
					i, kept[i].Header,
				)
			}
		}

		// PROPERTY: keptTokens is the exact sum over kept segments.
		sum := 0
		for _, c := range counts[offset:] {
			sum += c
		}
		if keptTokens != sum {
			t.Fatalf("keptTokens = %d, recount = %d",
				keptTokens, sum,
			)
		}

		// PROPERTY: truncated reflects whether the budget was
		// exceeded, and nothing is dropped otherwise.
		if maxTokens <= 0 || total <= maxTokens {
			if truncated || len(kept) != len(segs) {
				t.Fatalf(
					"in-budget transcript modified: truncated=%v kept=%d",
					truncated, len(kept),
				)
			}
		} else if !truncated {
			t.Fatal("over-budget transcript not marked truncated")
		}

		// PROPERTY: Multi-segment results respect the budget.
		if truncated && len(kept) > 1 && keptTokens > maxTokens {
			t.Fatalf("kept %d tokens over budget %d",
				keptTokens, maxTokens,
			)
		}
	})
}

// TestDigestChangeDetection verifies that appending to a transcript
// always changes its digest while rereading never does.
func TestDigestChangeDetection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numLines := rapid.IntRange(1, 10).Draw(t, "numLines")

		base := ""
		for i := 0; i < numLines; i++ {
			msg := rapid.StringMatching(`[a-zA-Z0-9 ]{1,40}`).
				Draw(t, fmt.Sprintf("msg%d", i))
			base += fmt.Sprintf(
				`{"payload":{"type":"agent_message","message":"%s x"}}`+"\n",
				msg,
			)
		}

		dir, err := os.MkdirTemp("", "transcript-digest-*")
		if err != nil {
			t.Fatal(err)
		}
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "session.jsonl")
		if err := os.WriteFile(path, []byte(base), 0o644); err != nil {
			t.Fatal(err)
		}

		first, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		again, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}

		// PROPERTY: Rereading unchanged content is digest-stable.
		if first.Digest != again.Digest {
			t.Fatal("digest unstable across reads")
		}

		// PROPERTY: Appending a renderable line changes the digest.
		appended := base +
			`{"payload":{"type":"agent_message","message":"tail z"}}` +
			"\n"
		if err := os.WriteFile(
			path, []byte(appended), 0o644,
		); err != nil {
			t.Fatal(err)
		}

		grown, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if grown.Digest == first.Digest {
			t.Fatal("append did not change digest")
		}
		if len(grown.Segments) != len(first.Segments)+1 {
			t.Fatalf("segments = %d, want %d",
				len(grown.Segments), len(first.Segments)+1,
			)
		}
	})
}
