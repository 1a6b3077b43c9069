// Package tasks runs bulk watchlist operations with real-time progress reporting.
//
// # Core Operations
//
// [Engine] offers two operations:
//
//  1. [Engine.Export] : Snapshot a user's watchlist to disk
//     - Fetches every entry from the backend
//     - Writes json, csv, markdown or txt through the formatter package
//     - For markdown, optionally downloads posters through a rate-limited worker pool
//
//  2. [Engine.Import] : Recreate entries from an export file
//     - Validates each entry and stamps it with the importing user
//     - Skips entries already on the watchlist (same title and category)
//     - Creates the rest through a rate-limited worker pool; failures are collected, not fatal
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
