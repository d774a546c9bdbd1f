package summary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BranchManager69/codextendo/internal/transcript"
)

// RefreshOptions control a refresh pass over the sessions directory.
type RefreshOptions struct {
	// Limit restricts the pass to the newest N sessions by mtime.
	// Zero means no limit.
	Limit int

	// Force rebuilds every summary regardless of cache state.
	Force bool
}

// RefreshResult reports what a refresh pass did.
type RefreshResult struct {
	// Refreshed lists the sessions summarized this pass, in
	// completion order.
	Refreshed []*SessionSummary

	// Failed counts sessions whose summarization failed. Failures are
	// isolated: the rest of the pass continues and the index still
	// commits.
	Failed int

	// UpToDate is true when no session needed processing.
	UpToDate bool
}

// sessionFile is one discovered transcript.
type sessionFile struct {
	path    string
	modTime time.Time
}

// Refresh summarizes every unseen or changed session under the
// configured sessions directory and commits the updated index in one
// write at the end. On cancellation it stops dispatching new work,
// commits what completed, and returns the context error alongside the
// partial result.
func (s *Service) Refresh(
	ctx context.Context, opts RefreshOptions,
) (*RefreshResult, error) {
	index, err := LoadIndex(s.cfg.IndexPath)
	if err != nil {
		return nil, err
	}

	sessions, err := listSessions(s.cfg.SessionsDir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].modTime.Equal(sessions[j].modTime) {
			return sessions[i].path < sessions[j].path
		}
		return sessions[i].modTime.Before(sessions[j].modTime)
	})

	if opts.Limit > 0 && len(sessions) > opts.Limit {
		sessions = sessions[len(sessions)-opts.Limit:]
	}

	toProcess, err := s.selectStale(index, sessions, opts.Force)
	if err != nil {
		return nil, err
	}

	if len(toProcess) == 0 {
		return &RefreshResult{UpToDate: true}, nil
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result RefreshResult
	)

	workers := s.cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

dispatch:
	for _, sess := range toProcess {
		if ctx.Err() != nil {
			break
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()

			summary, err := s.SummarizeSession(ctx, path, "")
			if err != nil {
				s.log.Warn("Failed to summarize session",
					"session", filepath.Base(path),
					"error", err,
				)
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return
			}

			summary.Record.SummarizedAt = formatTimestamp(
				time.Now(),
			)

			mu.Lock()
			index[summary.Record.SessionID] = summary.Record
			result.Refreshed = append(result.Refreshed, summary)
			mu.Unlock()
		}(sess.path)
	}

	wg.Wait()

	if err := index.Write(s.cfg.IndexPath); err != nil {
		return nil, err
	}

	return &result, ctx.Err()
}

// selectStale picks the sessions whose summaries must be rebuilt:
// everything when forced, unseen sessions, and seen sessions whose
// fresh digest or latest timestamp disagrees with the index.
func (s *Service) selectStale(
	index Index, sessions []sessionFile, force bool,
) ([]sessionFile, error) {
	var stale []sessionFile

	for _, sess := range sessions {
		if force {
			stale = append(stale, sess)
			continue
		}

		entry, seen := index[transcript.DeriveSessionID(sess.path)]
		if !seen {
			stale = append(stale, sess)
			continue
		}

		tr, err := transcript.ReadFile(sess.path)
		if err != nil {
			return nil, err
		}

		// Sessions that no longer render any content are left alone;
		// there is nothing new worth summarizing.
		if len(tr.Segments) == 0 {
			continue
		}

		latest := ""
		tr.LatestTimestamp.WhenSome(func(ts time.Time) {
			latest = formatTimestamp(ts)
		})

		if tr.Digest != entry.Digest ||
			latest != entry.LatestTimestamp {

			stale = append(stale, sess)
		}
	}

	return stale, nil
}

// listSessions walks root recursively collecting .jsonl transcripts. A
// missing root is treated as an empty sessions directory.
func listSessions(root string) ([]sessionFile, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var sessions []sessionFile

	err := filepath.WalkDir(root, func(
		path string, d fs.DirEntry, err error,
	) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".jsonl") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		sessions = append(sessions, sessionFile{
			path:    path,
			modTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sessions, nil
}
