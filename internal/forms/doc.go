// Package forms holds the UI-agnostic controllers behind every interactive view: login, registration, the
// entry form, the account form and the watchlist table.
//
// Each controller owns exactly one [Status] that every outcome overwrites. Submission runs in three steps:
//   - Validate checks fields locally and never touches the network
//   - Send performs the round trip and nothing else, so it can run on a worker goroutine
//   - Complete applies the outcome, including session writes, and must run on the UI loop
//
// Submit chains the three for synchronous callers. [Submission] brackets the round trip so the submit control is
// re-enabled on every exit path.
package forms
