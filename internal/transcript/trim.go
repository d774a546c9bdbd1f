package transcript

// TokenCounter counts tokens in rendered segment text.
type TokenCounter interface {
	Count(text string) int
}

// Trim cuts segments down to maxTokens, always keeping a contiguous
// suffix so the most recent conversation survives. maxTokens <= 0
// disables trimming. keptTokens is the token count of the returned
// segments; truncated reports whether the full transcript exceeded the
// budget, which includes the case where a single oversized segment is
// kept anyway.
func Trim(
	segments []Segment, maxTokens int, counter TokenCounter,
) (kept []Segment, truncated bool, keptTokens int) {
	if len(segments) == 0 {
		return segments, false, 0
	}

	counts := make([]int, len(segments))
	total := 0
	for i, seg := range segments {
		counts[i] = counter.Count(seg.Combined)
		total += counts[i]
	}

	if maxTokens <= 0 || total <= maxTokens {
		return segments, false, total
	}

	// Walk from the front, dropping the oldest segments until the
	// remainder fits. The final segment is never dropped here, so a
	// single segment larger than the budget is kept whole.
	start := 0
	running := total
	for start < len(segments)-1 && running > maxTokens {
		running -= counts[start]
		start++
	}

	kept = segments[start:]
	keptTokens = running

	// Keep dropping from the front if the remainder still exceeds the
	// budget, down to a single segment.
	for len(kept) > 1 && keptTokens > maxTokens {
		keptTokens -= counts[start]
		kept = kept[1:]
		start++
	}

	return kept, true, keptTokens
}
