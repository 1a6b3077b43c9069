package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/shared"
	"golang.org/x/time/rate"
)

// ImportStatus is the outcome of importing one entry.
type ImportStatus int

const (
	ImportFailed ImportStatus = iota
	ImportCreated
	ImportSkipped
)

func (s ImportStatus) String() string {
	switch s {
	case ImportCreated:
		return "created"
	case ImportSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// ImportOpts contains configuration for entry imports.
type ImportOpts struct {
	NumWorkers    int     // Concurrent workers (default: 5)
	RateLimit     float64 // Requests per second (default: 5)
	AllowExisting bool    // Create entries even when the same title and category is already listed
	DryRun        bool    // Validate and deduplicate without creating anything
}

// EntryImportResult is the outcome for one input entry.
type EntryImportResult struct {
	Index  int
	Entry  models.Entry
	Status ImportStatus
	Error  error
}

// ImportResult summarizes an import.
type ImportResult struct {
	Total   int
	Created int
	Skipped int
	Failed  int
	Results []EntryImportResult
}

type importJob struct {
	index int
	entry models.Entry
}

// Import creates entries for userID, skipping ones already on the watchlist unless opts.AllowExisting is set.
//
// Entries are validated first; invalid ones fail without a request. The rest are created through a worker pool
// throttled by a rate limiter. Per-entry failures are reported in the result, not returned as an error.
func (e *Engine) Import(ctx context.Context, prog chan<- ProgressUpdate, userID int64, entries []models.Entry, opts ImportOpts) (*ImportResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	result := &ImportResult{
		Total:   len(entries),
		Results: make([]EntryImportResult, len(entries)),
	}

	existing := map[string]bool{}
	if !opts.AllowExisting {
		listed, err := e.watchlist.List(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch watchlist: %w", err)
		}
		for _, entry := range listed {
			existing[entryKey(entry)] = true
		}
	}

	e.sendProgress(prog, importStartedUpdate(len(entries)))

	completed := 0
	record := func(res EntryImportResult) {
		completed++
		result.Results[res.Index] = res
		e.sendProgress(prog, importResultUpdate(completed, len(entries), res))
	}

	var pending []importJob
	for i, entry := range entries {
		entry.ID = nil
		entry.UserID = models.Int64(userID)
		if !entry.Watched {
			entry.Rating = 0
		}

		res := EntryImportResult{Index: i, Entry: entry}
		key := entryKey(entry)
		switch err := entry.Validate(); {
		case err != nil:
			res.Status, res.Error = ImportFailed, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		case existing[key]:
			res.Status = ImportSkipped
		case opts.DryRun:
			res.Status = ImportCreated
			existing[key] = !opts.AllowExisting
		default:
			existing[key] = !opts.AllowExisting
			pending = append(pending, importJob{index: i, entry: entry})
			continue
		}
		record(res)
	}

	if len(pending) > 0 {
		limiter := rate.NewLimiter(rate.Limit(rateLimit(opts.RateLimit)), 1)
		jobs := make(chan importJob, len(pending))
		results := make(chan EntryImportResult, len(pending))

		var wg sync.WaitGroup
		for i := 0; i < poolSize(opts.NumWorkers); i++ {
			wg.Add(1)
			go e.importWorker(ctx, &wg, limiter, jobs, results)
		}

		for _, job := range pending {
			jobs <- job
		}
		close(jobs)

		go func() {
			wg.Wait()
			close(results)
		}()

		for res := range results {
			record(res)
		}
	}

	for _, res := range result.Results {
		switch res.Status {
		case ImportCreated:
			result.Created++
		case ImportSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}

	e.logger.Info("import finished", "total", result.Total, "created", result.Created,
		"skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (e *Engine) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan importJob,
	results chan<- EntryImportResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := EntryImportResult{Index: job.index, Entry: job.entry}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results <- res
			continue
		}

		created, err := e.watchlist.Create(ctx, job.entry)
		if err != nil {
			res.Error = err
		} else {
			res.Status = ImportCreated
			if created != nil {
				res.Entry = *created
			}
		}
		results <- res
	}
}

// entryKey identifies an entry for duplicate detection: category plus case-insensitive title.
func entryKey(e models.Entry) string {
	return string(e.Type) + "\x00" + strings.ToLower(strings.TrimSpace(e.Title))
}
