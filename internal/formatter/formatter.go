// package formatter provides functions to export watchlist data to various formats (CSV, Markdown, plain text, JSON)
// and to read exported entries back in.
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/shared"
)

var csvHeaders = []string{"ID", "Title", "Type", "Genre", "Watched", "Rating", "PosterURL"}

// ExportToCSV converts a WatchlistExport to CSV format with columns: ID, Title, Type, Genre, Watched, Rating, PosterURL
func ExportToCSV(export *models.WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range export.Entries {
		id := ""
		if entry.HasID() {
			id = strconv.FormatInt(entry.IDValue(), 10)
		}
		record := []string{
			id,
			entry.Title,
			string(entry.Type),
			entry.Genre,
			strconv.FormatBool(entry.Watched),
			strconv.Itoa(entry.Rating),
			entry.PosterURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseCSV reads entries written by [ExportToCSV]. Columns are matched by header name, so extra or reordered
// columns are accepted. Title and Type are required.
func ParseCSV(r io.Reader) ([]models.Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", shared.ErrInvalidInput, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"title", "type"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: CSV is missing the %q column", shared.ErrInvalidInput, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []models.Entry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
		}

		category, err := models.ParseCategory(field(record, "type"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
		}

		entry := models.Entry{
			Title:     field(record, "title"),
			Type:      category,
			Genre:     field(record, "genre"),
			PosterURL: field(record, "posterurl"),
		}
		if v := field(record, "id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid id %q", shared.ErrInvalidInput, line, v)
			}
			entry.ID = &id
		}
		if v := field(record, "watched"); v != "" {
			watched, err := parseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid watched value %q", shared.ErrInvalidInput, line, v)
			}
			entry.Watched = watched
		}
		if v := field(record, "rating"); v != "" {
			rating, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid rating %q", shared.ErrInvalidInput, line, v)
			}
			entry.Rating = rating
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "ja", "yes", "y":
		return true, nil
	case "nein", "no", "n":
		return false, nil
	default:
		return strconv.ParseBool(v)
	}
}

// ExportToMarkdown converts a WatchlistExport to Markdown format.
//
// posters maps entry IDs to local image paths relative to the Markdown file. Entries without a local poster link
// their remote poster URL instead.
func ExportToMarkdown(export *models.WatchlistExport, posters map[int64]string) ([]byte, error) {
	var buf bytes.Buffer
	meta := export.Metadata()

	buf.WriteString(fmt.Sprintf("# Watchlist von %s\n\n", export.Owner))
	buf.WriteString(fmt.Sprintf("**Einträge**: %d\n", meta.Total))
	buf.WriteString(fmt.Sprintf("**Gesehen**: %d\n", meta.Watched))
	if !export.ExportedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Exportiert**: %s\n", export.ExportedAt.Format(time.DateOnly)))
	}
	buf.WriteString("\n")

	for _, category := range models.Categories {
		section := filterCategory(export.Entries, category)
		if len(section) == 0 {
			continue
		}

		buf.WriteString(fmt.Sprintf("## %s\n\n", category))
		for i, entry := range section {
			genrePart := ""
			if entry.Genre != "" {
				genrePart = fmt.Sprintf(" (%s)", entry.Genre)
			}
			buf.WriteString(fmt.Sprintf("%d. **%s**%s, gesehen: %s, %s\n",
				i+1, entry.Title, genrePart, entry.WatchedLabel(), entry.Stars()))

			poster := entry.PosterURL
			if local, ok := posters[entry.IDValue()]; ok && entry.HasID() {
				poster = local
			}
			if poster != "" {
				buf.WriteString(fmt.Sprintf("   ![%s Cover](%s)\n", entry.Title, poster))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func filterCategory(entries []models.Entry, category models.Category) []models.Entry {
	var out []models.Entry
	for _, e := range entries {
		if e.Type == category {
			out = append(out, e)
		}
	}
	return out
}

// ExportToText converts a WatchlistExport to plain text format
func ExportToText(export *models.WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Watchlist: %s\n", export.Owner))
	buf.WriteString(fmt.Sprintf("Einträge: %d\n\n", len(export.Entries)))

	for i, entry := range export.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] %s\n", i+1, entry.Title, entry.Type, entry.Stars()))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the whole export, entries included, as indented JSON.
func ExportToJSON(export *models.WatchlistExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ToMetadataJSON generates a JSON representation of export metadata (without entries)
func ToMetadataJSON(export *models.WatchlistExport) ([]byte, error) {
	return shared.MarshalJSON(export.Metadata(), true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	EntriesFile  string
	MetadataFile string
}

// WriteCSVExport exports a watchlist to CSV format with accompanying metadata JSON file.
//
// Defaults to the owner as the base filename & creates {base}_entries.csv and {base}_metadata.json
func WriteCSVExport(export *models.WatchlistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = defaultBase(export)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	entriesFile := baseFilepath + "_entries.csv"
	if err := os.WriteFile(entriesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		EntriesFile:  entriesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Posters   []string
}

// WriteMarkdownExport exports a watchlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the owner's name.
// posters holds downloaded poster images by entry ID; each is saved as {dir}/posters/{id}.jpg and linked from
// {dir}/README.md. A poster that cannot be saved is logged and linked remotely instead.
func WriteMarkdownExport(export *models.WatchlistExport, outputDir string, posters map[int64][]byte, logger *log.Logger) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = defaultBase(export)
	}
	if logger == nil {
		logger = log.Default()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	local := make(map[int64]string, len(posters))
	if len(posters) > 0 {
		posterDir := filepath.Join(outputDir, "posters")
		if err := os.MkdirAll(posterDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create poster directory: %w", err)
		}

		for id, data := range posters {
			name := fmt.Sprintf("%d.jpg", id)
			path := filepath.Join(posterDir, name)
			if err := os.WriteFile(path, data, 0644); err != nil {
				logger.Warn("failed to save poster", "id", id, "error", err)
				continue
			}
			local[id] = "posters/" + name
			result.Posters = append(result.Posters, path)
			result.Files = append(result.Files, path)
		}
	}

	mdData, err := ExportToMarkdown(export, local)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a watchlist to plain text format.
//
// Defaults to {owner}_entries.txt as the filename.
func WriteTextExport(export *models.WatchlistExport, path string) (string, error) {
	if path == "" {
		path = defaultBase(export) + "_entries.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports a watchlist to a JSON file. Defaults to {owner}.json.
func WriteJSONExport(export *models.WatchlistExport, path string) (string, error) {
	if path == "" {
		path = defaultBase(export) + ".json"
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}

	return path, nil
}

// ReadEntries loads entries from a file written by one of the exporters.
//
// Files ending in .csv are parsed with [ParseCSV]. Anything else is read as JSON, either a full
// [models.WatchlistExport] or a bare array of entries.
func ReadEntries(path string) ([]models.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseCSV(bytes.NewReader(data))
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var entries []models.Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return entries, nil
	}

	var export models.WatchlistExport
	if err := json.Unmarshal(trimmed, &export); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return export.Entries, nil
}

func defaultBase(export *models.WatchlistExport) string {
	if export.Owner == "" {
		return "watchlist"
	}
	return "watchlist_" + export.Owner
}
