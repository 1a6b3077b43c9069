package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/watchlist/internal/formatter"
	"github.com/desertthunder/watchlist/internal/forms"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/shared"
	"github.com/desertthunder/watchlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// loadTable fetches the signed-in user's watchlist into a [forms.WatchlistTable].
func (r *Runner) loadTable(ctx context.Context) (*forms.WatchlistTable, *models.User, error) {
	u, err := r.requireAuth()
	if err != nil {
		return nil, nil, err
	}

	list := forms.NewWatchlistTable(r.watchlist, r.session, r.logger)
	loaded := list.SendLoad(ctx, u.ID)
	if !list.CompleteLoad(loaded) {
		if loaded.Err == nil {
			return nil, nil, fmt.Errorf("%w: session changed while loading", shared.ErrNotAuthenticated)
		}
		return nil, nil, loaded.Err
	}
	return list, u, nil
}

// findEntry returns the row index of the entry with id.
func findEntry(list *forms.WatchlistTable, id int64) (int, models.Entry, error) {
	for i, e := range list.Items() {
		if e.IDValue() == id {
			return i, e, nil
		}
	}
	return -1, models.Entry{}, fmt.Errorf("%w: id %d", shared.ErrEntryNotFound, id)
}

// EntriesList prints the watchlist as a table or JSON.
func (r *Runner) EntriesList(ctx context.Context, cmd *cli.Command) error {
	list, _, err := r.loadTable(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list.Items(), cmd.Bool("pretty"))
	}

	if msg := list.EmptyMessage(); msg != "" {
		return r.writePlain("%s\n", msg)
	}

	headers := append([]string{"ID"}, forms.TableColumns...)
	rows := list.Rows()
	for i, e := range list.Items() {
		rows[i] = append([]string{strconv.FormatInt(e.IDValue(), 10)}, rows[i]...)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return r.writePlain("%s\n", t.String())
}

// applyEntryFlags copies the entry flags that were set onto form.
func applyEntryFlags(cmd *cli.Command, form *forms.EntryForm) {
	if cmd.IsSet("title") {
		form.Title = cmd.String("title")
	}
	if cmd.IsSet("type") {
		raw := cmd.String("type")
		c, err := models.ParseCategory(raw)
		if err != nil {
			c = models.Category(raw)
		}
		form.Type = c
	}
	if cmd.IsSet("genre") {
		form.Genre = cmd.String("genre")
	}
	if cmd.IsSet("watched") {
		form.Watched = cmd.Bool("watched")
	}
	if cmd.IsSet("rating") {
		form.Rating = cmd.Int("rating")
	}
}

// saveEntry validates and sends form, returning the saved entry.
func (r *Runner) saveEntry(ctx context.Context, form *forms.EntryForm) (*models.Entry, error) {
	if !form.Validate() {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidInput, form.Status())
	}
	saved := form.Send(ctx, form.Request())
	if !form.Complete(saved) {
		return nil, fmt.Errorf("%s: %w", form.Status(), saved.Err)
	}
	return saved.Entry, nil
}

// EntriesAdd creates an entry.
func (r *Runner) EntriesAdd(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAuth(); err != nil {
		return err
	}

	form := forms.NewEntryForm(r.watchlist, r.session, r.logger)
	applyEntryFlags(cmd, form)

	saved, err := r.saveEntry(ctx, form)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s\n  #%d %s [%s] %s\n", form.Status(), saved.IDValue(), saved.Title, saved.Type, saved.Stars())
}

// EntriesEdit changes the fields given as flags and keeps the others.
func (r *Runner) EntriesEdit(ctx context.Context, cmd *cli.Command) error {
	list, _, err := r.loadTable(ctx)
	if err != nil {
		return err
	}
	_, entry, err := findEntry(list, cmd.Int64("id"))
	if err != nil {
		return err
	}

	form := forms.NewEntryForm(r.watchlist, r.session, r.logger)
	form.Load(entry)
	applyEntryFlags(cmd, form)

	saved, err := r.saveEntry(ctx, form)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s\n  #%d %s [%s] %s\n", form.Status(), saved.IDValue(), saved.Title, saved.Type, saved.Stars())
}

// EntriesWatch marks an entry as watched with a rating.
func (r *Runner) EntriesWatch(ctx context.Context, cmd *cli.Command) error {
	list, _, err := r.loadTable(ctx)
	if err != nil {
		return err
	}
	_, entry, err := findEntry(list, cmd.Int64("id"))
	if err != nil {
		return err
	}

	form := forms.NewEntryForm(r.watchlist, r.session, r.logger)
	form.Load(entry)
	form.Watched = true
	form.Rating = cmd.Int("rating")

	saved, err := r.saveEntry(ctx, form)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s gesehen %s\n", saved.Title, saved.Stars())
}

// EntriesDelete deletes an entry after asking for confirmation.
func (r *Runner) EntriesDelete(ctx context.Context, cmd *cli.Command) error {
	list, u, err := r.loadTable(ctx)
	if err != nil {
		return err
	}
	i, entry, err := findEntry(list, cmd.Int64("id"))
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.confirm(list.DeleteConfirmation(i))
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Abgebrochen\n")
		}
	}

	deleted := list.SendDelete(ctx, entry.IDValue(), u.ID)
	if !list.CompleteDelete(deleted) {
		return fmt.Errorf("%s: %w", list.Status(), deleted.Err)
	}
	return r.writePlain("✓ %s: %s\n", list.Status(), entry.Title)
}

// EntriesOpen opens the cover of an entry with the system browser.
func (r *Runner) EntriesOpen(ctx context.Context, cmd *cli.Command) error {
	list, _, err := r.loadTable(ctx)
	if err != nil {
		return err
	}
	_, entry, err := findEntry(list, cmd.Int64("id"))
	if err != nil {
		return err
	}
	if entry.PosterURL == "" {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, forms.MsgNoCover)
	}

	r.logger.Info("opening cover", "title", entry.Title, "url", entry.PosterURL)
	return r.openURL(entry.PosterURL)
}

// EntriesRefreshPosters asks the backend to fill in missing covers.
func (r *Runner) EntriesRefreshPosters(ctx context.Context, cmd *cli.Command) error {
	u, err := r.requireAuth()
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.confirm(forms.MsgRefreshConfirm)
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Abgebrochen\n")
		}
	}

	list := forms.NewWatchlistTable(r.watchlist, r.session, r.logger)
	refreshed := list.SendRefresh(ctx, u.ID)
	if !list.CompleteRefresh(refreshed) {
		return fmt.Errorf("%s: %w", list.Status(), refreshed.Err)
	}
	return r.writePlain("✓ %s\n", list.Status())
}

// printProgress writes progress updates until ch is closed, then closes done.
func (r *Runner) printProgress(ch <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range ch {
		switch {
		case update.Phase == tasks.DownloadPosters && update.Step == 1:
			r.writePlain("\n🖼  Downloading covers\n   %s\n", update.Message)
		case update.Phase == tasks.ImportEntries && update.Step == 0:
			r.writePlain("\n📥 %s\n", update.Message)
		case update.Step == 0:
			r.writePlain("%s\n", update.Message)
		default:
			r.writePlain("   %s\n", update.Message)
		}
	}
}

// EntriesExport writes the watchlist to files.
func (r *Runner) EntriesExport(ctx context.Context, cmd *cli.Command) error {
	u, err := r.requireAuth()
	if err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: export engine not initialized", shared.ErrServiceUnavailable)
	}

	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		Posters:    cmd.Bool("posters"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate-limit"),
	}
	r.logger.Info("exporting watchlist", "format", opts.Format, "posters", opts.Posters)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progressCh, done)

	result, err := r.engine.Export(ctx, progressCh, u.ID, u.Username, opts)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	r.writePlainHeader("Export Complete!")
	r.writePlain("Format:  %s\n", result.Format)
	r.writePlain("Entries: %d\n", result.Entries)
	r.writePlain("Output:  %s\n", result.OutputDirectory)
	if result.PosterFailures > 0 {
		r.writePlain("Covers that could not be downloaded: %d\n", result.PosterFailures)
	}
	r.writePlain("\nFiles:\n")
	for _, f := range result.Files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// EntriesImport creates entries from an exported CSV or JSON file.
func (r *Runner) EntriesImport(ctx context.Context, cmd *cli.Command) error {
	u, err := r.requireAuth()
	if err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: import engine not initialized", shared.ErrServiceUnavailable)
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a .csv or .json file", shared.ErrMissingArgument)
	}

	entries, err := formatter.ReadEntries(path)
	if err != nil {
		return err
	}

	opts := tasks.ImportOpts{
		NumWorkers:    cmd.Int("workers"),
		RateLimit:     cmd.Float("rate-limit"),
		AllowExisting: cmd.Bool("allow-existing"),
		DryRun:        cmd.Bool("dry-run"),
	}
	r.logger.Info("importing entries", "path", path, "count", len(entries), "dry_run", opts.DryRun)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progressCh, done)

	result, err := r.engine.Import(ctx, progressCh, u.ID, entries, opts)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	title := "Import Complete!"
	if opts.DryRun {
		title = "Import Dry Run"
	}
	r.writePlainHeader(title)
	r.writePlain("Total:   %d\n", result.Total)
	r.writePlain("Created: %d\n", result.Created)
	r.writePlain("Skipped: %d\n", result.Skipped)
	r.writePlain("Failed:  %d\n", result.Failed)

	if result.Failed > 0 {
		r.writePlain("\nFailed entries:\n")
		for _, res := range result.Results {
			if res.Status == tasks.ImportFailed {
				r.writePlain("  • %s: %v\n", res.Entry.Title, res.Error)
			}
		}
	}
	return nil
}
