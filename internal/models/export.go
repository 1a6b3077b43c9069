package models

// WatchlistExport is a portable snapshot of one user's watchlist.
type WatchlistExport struct {
	Owner      string    `json:"owner"`
	ExportedAt Timestamp `json:"exportedAt"`
	Entries    []Entry   `json:"entries"`
}

// ExportMetadata summarizes a [WatchlistExport] without its entries.
type ExportMetadata struct {
	Owner      string           `json:"owner"`
	ExportedAt Timestamp        `json:"exportedAt"`
	Total      int              `json:"total"`
	Watched    int              `json:"watched"`
	ByCategory map[Category]int `json:"byCategory"`
}

// Metadata counts the entries of e.
func (e WatchlistExport) Metadata() ExportMetadata {
	m := ExportMetadata{
		Owner:      e.Owner,
		ExportedAt: e.ExportedAt,
		Total:      len(e.Entries),
		ByCategory: make(map[Category]int, len(Categories)),
	}
	for _, entry := range e.Entries {
		if entry.Watched {
			m.Watched++
		}
		m.ByCategory[entry.Type]++
	}
	return m
}
