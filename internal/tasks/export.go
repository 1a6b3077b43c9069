package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/watchlist/internal/formatter"
	"github.com/desertthunder/watchlist/internal/models"
	"golang.org/x/time/rate"
)

// Export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists the accepted export formats.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ExportOpts contains configuration for watchlist exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Output directory (default: watchlist_export_{epoch})
	Posters    bool    // Download posters (markdown only)
	NumWorkers int     // Concurrent poster downloads (default: 5)
	RateLimit  float64 // Poster downloads per second (default: 5)
}

// ExportResult describes what an export produced.
type ExportResult struct {
	Format          string
	OutputDirectory string
	Entries         int
	Files           []string
	PosterFailures  int
}

type posterJob struct {
	entry models.Entry
}

type posterResult struct {
	id   int64
	data []byte
	err  error
}

// Export fetches the watchlist of userID and writes it in the requested format.
func (e *Engine) Export(ctx context.Context, prog chan<- ProgressUpdate, userID int64, owner string, opts ExportOpts) (*ExportResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("watchlist_export_%d", time.Now().Unix())
	}

	e.sendProgress(prog, fetchingEntriesUpdate())
	entries, err := e.watchlist.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watchlist: %w", err)
	}
	e.sendProgress(prog, fetchedEntriesUpdate(len(entries)))

	export := &models.WatchlistExport{
		Owner:      owner,
		ExportedAt: models.NewTimestamp(time.Now()),
		Entries:    entries,
	}
	return e.WriteExport(ctx, prog, export, opts)
}

// WriteExport writes an already fetched export.
func (e *Engine) WriteExport(ctx context.Context, prog chan<- ProgressUpdate, export *models.WatchlistExport, opts ExportOpts) (*ExportResult, error) {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		Entries:         len(export.Entries),
	}

	base := filepath.Join(opts.OutputDir, "watchlist")
	e.sendProgress(prog, writingExportUpdate(opts.Format))

	switch opts.Format {
	case FormatCSV:
		res, err := formatter.WriteCSVExport(export, base)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		result.Files = []string{res.EntriesFile, res.MetadataFile}

	case FormatMarkdown:
		var posters map[int64][]byte
		if opts.Posters {
			posters, result.PosterFailures = e.fetchPosters(ctx, prog, export.Entries, opts)
		}
		res, err := formatter.WriteMarkdownExport(export, opts.OutputDir, posters, e.logger)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		result.Files = res.Files

	case FormatText:
		path, err := formatter.WriteTextExport(export, base+".txt")
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		result.Files = []string{path}

	case FormatJSON:
		path, err := formatter.WriteJSONExport(export, base+".json")
		if err != nil {
			return nil, fmt.Errorf("JSON export failed: %w", err)
		}
		result.Files = []string{path}

	default:
		return nil, fmt.Errorf("unsupported format %q (use one of %v)", opts.Format, Formats)
	}

	e.sendProgress(prog, exportWrittenUpdate(result.Files))
	return result, nil
}

// fetchPosters downloads the posters of entries that have one, using a worker pool throttled by a rate limiter.
// Failed downloads are counted and left out of the returned map.
func (e *Engine) fetchPosters(ctx context.Context, prog chan<- ProgressUpdate, entries []models.Entry, opts ExportOpts) (map[int64][]byte, int) {
	var withPoster []models.Entry
	for _, entry := range entries {
		if entry.HasID() && entry.PosterURL != "" {
			withPoster = append(withPoster, entry)
		}
	}
	total := len(withPoster)
	if total == 0 {
		return nil, 0
	}

	limiter := rate.NewLimiter(rate.Limit(rateLimit(opts.RateLimit)), 1)
	jobs := make(chan posterJob, total)
	results := make(chan posterResult, total)

	var wg sync.WaitGroup
	for i := 0; i < poolSize(opts.NumWorkers); i++ {
		wg.Add(1)
		go e.posterWorker(ctx, &wg, limiter, jobs, results)
	}

	for _, entry := range withPoster {
		jobs <- posterJob{entry: entry}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	byID := make(map[int64]models.Entry, total)
	for _, entry := range withPoster {
		byID[entry.IDValue()] = entry
	}

	posters := make(map[int64][]byte, total)
	failed, completed := 0, 0
	for res := range results {
		completed++
		if res.err != nil {
			failed++
			e.logger.Warn("poster download failed", "id", res.id, "error", res.err)
		} else {
			posters[res.id] = res.data
		}
		e.sendProgress(prog, posterUpdate(completed, total, byID[res.id], res.err))
	}

	return posters, failed
}

func (e *Engine) posterWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan posterJob,
	results chan<- posterResult,
) {
	defer wg.Done()

	for job := range jobs {
		id := job.entry.IDValue()
		if err := limiter.Wait(ctx); err != nil {
			results <- posterResult{id: id, err: err}
			continue
		}

		data, err := e.downloadPoster(ctx, job.entry.PosterURL)
		results <- posterResult{id: id, data: data, err: err}
	}
}

func defaultDownloader(ctx context.Context, url string) ([]byte, error) {
	return formatter.DownloadImage(ctx, url)
}
