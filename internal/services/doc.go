// Package services implements the HTTP clients for the watchlist backend.
//
// # API Client
//
// [APIService] performs raw JSON requests against the resolved backend base URL. Every request carries an
// X-Request-ID header and, when configured, waits on a rate limiter first. HTTP error statuses are returned as
// responses; only failures to complete the round trip are returned as errors.
//
// # Auth Client
//
// [AuthClient] implements [AuthService] for the four identity endpoints:
//   - POST /auth/login, POST /auth/register : the server's {success, message, user} body is returned verbatim,
//     whatever the status code. Domain rejections are results, not errors.
//   - GET /auth/user/{id} : any failure is [shared.ErrFetchUser]
//   - PUT /auth/user/{id} : failures are [UpdateError], carrying the server's message when it sent one
//
// # Watchlist Client
//
// [WatchlistClient] implements [WatchlistService], the entry CRUD endpoints under /Watchlist scoped by userId.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNetwork] : no response, or a response that could not be decoded
//   - [shared.ErrFetchUser], [shared.ErrUpdateUser] : user endpoint failures
//   - [shared.ErrAPIRequest] : unexpected status from a watchlist endpoint
//   - [shared.ErrEntryNotFound] : 404 from a watchlist endpoint
package services
