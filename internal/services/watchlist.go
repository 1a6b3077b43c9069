package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/shared"
)

// WatchlistClient talks to the /Watchlist endpoints of the backend.
type WatchlistClient struct {
	api    *APIService
	logger *log.Logger
}

// NewWatchlistClient creates a [WatchlistClient] that sends requests through api.
func NewWatchlistClient(api *APIService, logger *log.Logger) *WatchlistClient {
	if logger == nil {
		logger = log.Default()
	}
	return &WatchlistClient{api: api, logger: logger.WithPrefix("watchlist")}
}

// List returns every entry owned by userID.
func (c *WatchlistClient) List(ctx context.Context, userID int64) ([]models.Entry, error) {
	resp, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/Watchlist?userId=%d", userID), nil)
	if err != nil {
		return nil, err
	}

	entries := []models.Entry{}
	if err := resp.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return entries, nil
}

// Create stores a new entry. The entry must carry its owner's UserID.
func (c *WatchlistClient) Create(ctx context.Context, entry models.Entry) (*models.Entry, error) {
	if entry.UserID == nil {
		return nil, fmt.Errorf("%w: entry has no user", shared.ErrInvalidInput)
	}
	entry.ID = nil

	resp, err := c.send(ctx, http.MethodPost, "/Watchlist", entry)
	if err != nil {
		return nil, err
	}
	return decodeEntry(resp, entry)
}

// Update replaces the stored entry with the same ID.
func (c *WatchlistClient) Update(ctx context.Context, entry models.Entry) (*models.Entry, error) {
	if !entry.HasID() {
		return nil, fmt.Errorf("%w: entry has no id", shared.ErrInvalidInput)
	}

	resp, err := c.send(ctx, http.MethodPut, fmt.Sprintf("/Watchlist/%d", entry.IDValue()), entry)
	if err != nil {
		return nil, err
	}
	return decodeEntry(resp, entry)
}

func (c *WatchlistClient) Delete(ctx context.Context, id, userID int64) error {
	_, err := c.send(ctx, http.MethodDelete, fmt.Sprintf("/Watchlist/%d?userId=%d", id, userID), nil)
	return err
}

// RefreshAllPosters asks the backend to re-resolve poster URLs and returns its summary text.
func (c *WatchlistClient) RefreshAllPosters(ctx context.Context, userID int64) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, fmt.Sprintf("/Watchlist/refresh-all-posters?userId=%d", userID), nil)
	if err != nil {
		return "", err
	}

	if resp.IsJSON {
		if s, ok := resp.JSONData.(string); ok {
			return s, nil
		}
	}
	return strings.TrimSpace(string(resp.Body)), nil
}

func (c *WatchlistClient) send(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	resp, err := c.api.Do(ctx, method, path, body)
	if err != nil {
		c.logger.Error("request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}

	switch {
	case resp.OK():
		return resp, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", shared.ErrEntryNotFound, method, path)
	default:
		c.logger.Warn("unexpected status", "method", method, "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s %s returned status %d%s", shared.ErrAPIRequest, method, path,
			resp.StatusCode, bodySnippet(resp.Body))
	}
}

// decodeEntry decodes the saved entry, falling back to the sent one when the backend replies without a body.
func decodeEntry(resp *APIResponse, sent models.Entry) (*models.Entry, error) {
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return &sent, nil
	}

	var saved models.Entry
	if err := resp.Decode(&saved); err != nil {
		return nil, errors.Join(shared.ErrAPIRequest, err)
	}
	return &saved, nil
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return ""
	}
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return ": " + s
}
