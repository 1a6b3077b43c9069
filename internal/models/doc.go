// Package models defines the domain entities exchanged with the watchlist backend.
//
// The package contains two categories of types:
//
// 1. Identity and authentication DTOs:
//   - [User] : the backend's user record, cached client-side as the current session identity
//   - [LoginRequest], [RegisterRequest], [UpdateUserRequest] : request bodies for the auth endpoints
//   - [AuthResult] : the tagged outcome returned by login and registration
//
// 2. Watchlist entries:
//   - [Entry] : a movie, series, documentary or anime on the user's list
//   - [Category] : the fixed set of entry types
//
// All backend JSON uses camelCase field names, which the struct tags mirror.
// Timestamps use [Timestamp], which accepts both RFC 3339 and the zone-less form the backend emits.
package models
