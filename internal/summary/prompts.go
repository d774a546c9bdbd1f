package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// summarizerSystemPrompt instructs the model on shape and scope. The
// JSON schema enforced by the API does the heavy lifting; the prompt
// sets the editorial limits.
const summarizerSystemPrompt = "You are an assistant that summarizes " +
	"Codex CLI sessions. Produce a concise narrative plus structured " +
	"key actions, files, concerns, and concrete follow-ups. Limit " +
	"key_actions to the top 6 items and files_touched to the top 10 " +
	"paths. Always obey the supplied JSON schema, using empty arrays " +
	"when appropriate."

// promptParams carries everything the user prompt mentions about the
// session being summarized.
type promptParams struct {
	SessionID       string
	Label           string
	Truncated       bool
	KeptTokens      int
	TotalSegments   int
	KeptSegments    int
	LatestTimestamp fn.Option[time.Time]
	CombinedText    string
}

// buildUserPrompt assembles the transcript block sent to the model,
// prefixed with session identity and a truncation notice when the
// budget cut segments.
func buildUserPrompt(p promptParams) string {
	lines := []string{"Session ID: " + p.SessionID}

	if p.Label != "" {
		lines = append(lines, "Label: "+p.Label)
	}

	p.LatestTimestamp.WhenSome(func(ts time.Time) {
		lines = append(lines, "Latest message: "+formatTimestamp(ts))
	})

	if p.Truncated {
		lines = append(lines, fmt.Sprintf(
			"NOTE: Transcript truncated to the most recent %d of %d "+
				"segments (~%d tokens).",
			p.KeptSegments, p.TotalSegments, p.KeptTokens,
		))
	}

	lines = append(lines, "", "Transcript:", p.CombinedText)

	return strings.Join(lines, "\n")
}
