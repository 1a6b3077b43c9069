package tasks

import (
	"fmt"

	"github.com/desertthunder/watchlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchEntries Phase = iota
	DownloadPosters
	WriteExport
	ImportEntries
)

func (p Phase) String() string {
	switch p {
	case FetchEntries:
		return "fetch_entries"
	case DownloadPosters:
		return "download_posters"
	case WriteExport:
		return "write_export"
	case ImportEntries:
		return "import_entries"
	default:
		return ""
	}
}

func fetchingEntriesUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEntries,
		Step:    0,
		Total:   1,
		Message: "Fetching watchlist...",
	}
}

func fetchedEntriesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEntries,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d entries", count),
		Data:    count,
	}
}

func posterUpdate(step, total int, e models.Entry, err error) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, e.Title)
	if err != nil {
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, e.Title, err)
	}
	return ProgressUpdate{
		Phase:   DownloadPosters,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func writingExportUpdate(format string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Writing %s export...", format),
	}
}

func exportWrittenUpdate(files []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %d files", len(files)),
		Data:    files,
	}
}

func importStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportEntries,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d entries...", total),
	}
}

func importResultUpdate(step, total int, res EntryImportResult) ProgressUpdate {
	var msg string
	switch res.Status {
	case ImportCreated:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Entry.Title)
	case ImportSkipped:
		msg = fmt.Sprintf("[%d/%d] - %s (already on watchlist)", step, total, res.Entry.Title)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Entry.Title, res.Error)
	}
	return ProgressUpdate{
		Phase:   ImportEntries,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}
