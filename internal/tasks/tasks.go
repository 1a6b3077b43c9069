package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/services"
	"github.com/desertthunder/watchlist/internal/shared"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// Engine runs bulk operations against one [services.WatchlistService].
type Engine struct {
	watchlist services.WatchlistService
	logger    *log.Logger

	// downloadPoster fetches poster bytes; replaced in tests.
	downloadPoster func(ctx context.Context, url string) ([]byte, error)
}

// NewEngine creates a new Engine with the provided watchlist client.
func NewEngine(watchlist services.WatchlistService, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		watchlist:      watchlist,
		logger:         logger.WithPrefix("tasks"),
		downloadPoster: defaultDownloader,
	}
}

func (e *Engine) ready() error {
	if e.watchlist == nil {
		return fmt.Errorf("%w: watchlist client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// poolSize clamps a requested worker count.
func poolSize(n int) int {
	switch {
	case n <= 0:
		return defaultWorkers
	case n > maxWorkers:
		return maxWorkers
	default:
		return n
	}
}

func rateLimit(r float64) float64 {
	if r <= 0 {
		return defaultRateLimit
	}
	return r
}
