package services

import (
	"context"

	"github.com/desertthunder/watchlist/internal/models"
)

// AuthService defines the identity operations offered by the backend.
type AuthService interface {
	// Login posts credentials. A rejected login is a result with Success false, not an error.
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)

	// Register creates an account. Duplicate usernames come back as a result with Success false.
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)

	// FetchUser loads the user record by ID.
	FetchUser(ctx context.Context, id int64) (*models.User, error)

	// UpdateUser changes first name, last name and email and returns the updated record.
	UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error)
}

// WatchlistService defines the entry CRUD operations, all scoped to one user.
type WatchlistService interface {
	List(ctx context.Context, userID int64) ([]models.Entry, error)
	Create(ctx context.Context, entry models.Entry) (*models.Entry, error)
	Update(ctx context.Context, entry models.Entry) (*models.Entry, error)
	Delete(ctx context.Context, id, userID int64) error
	RefreshAllPosters(ctx context.Context, userID int64) (string, error)
}

var (
	_ AuthService      = (*AuthClient)(nil)
	_ WatchlistService = (*WatchlistClient)(nil)
)
