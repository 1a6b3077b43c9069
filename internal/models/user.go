package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// User is the backend's identity record. The username is immutable after registration.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	CreatedAt Timestamp  `json:"createdAt"`
	LastLogin *Timestamp `json:"lastLogin,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Clone returns a deep copy so callers cannot mutate a cached identity.
func (u User) Clone() *User {
	c := u
	if u.LastLogin != nil {
		ll := *u.LastLogin
		c.LastLogin = &ll
	}
	return &c
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// UpdateUserRequest is the body of PUT /auth/user/{id}. Username and password cannot be changed here.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// AuthResult is the structured outcome of login and registration.
//
// A false Success is a domain rejection (wrong password, duplicate username), not a transport failure.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

// timestampLayouts are tried in order when decoding.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Timestamp is a [time.Time] that also decodes zone-less ISO-8601 values as UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, dropping the monotonic clock reading.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Round(0)}
}

// ParseTimestamp parses s with the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON encodes the zero value as null and everything else as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, RFC 3339 and zone-less timestamps.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
