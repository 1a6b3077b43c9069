package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/shared"
)

// Messages shown when a profile update fails without a server-provided explanation.
const (
	MsgUpdateFailed  = "Fehler beim Aktualisieren des Benutzers"
	MsgUpdateNetwork = "Netzwerkfehler beim Aktualisieren des Benutzers"
)

// UpdateError is returned by [AuthClient.UpdateUser]. Message is safe to render.
type UpdateError struct {
	Message string
	Cause   error
}

func (e *UpdateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UpdateError) Unwrap() error { return e.Cause }

// Is matches [shared.ErrUpdateUser] so callers can branch without a type assertion.
func (e *UpdateError) Is(target error) bool { return target == shared.ErrUpdateUser }

// AuthClient talks to the /auth endpoints of the backend.
type AuthClient struct {
	api    *APIService
	logger *log.Logger
}

// NewAuthClient creates an [AuthClient] that sends requests through api.
func NewAuthClient(api *APIService, logger *log.Logger) *AuthClient {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthClient{api: api, logger: logger.WithPrefix("auth")}
}

// Login posts the credentials to /auth/login. A rejected login is not an error: the result carries
// Success false and the server message. Errors wrap [shared.ErrNetwork].
func (c *AuthClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

// Register creates an account through /auth/register and behaves like [AuthClient.Login] otherwise.
func (c *AuthClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

// authenticate posts body and returns whatever {success, message, user} the server sent, regardless of status.
func (c *AuthClient) authenticate(ctx context.Context, path string, body any) (*models.AuthResult, error) {
	resp, err := c.api.Post(ctx, path, body)
	if err != nil {
		c.logger.Error("auth request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}

	var result models.AuthResult
	if err := resp.Decode(&result); err != nil {
		c.logger.Error("undecodable auth response", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}

	if !resp.OK() {
		c.logger.Warn("auth rejected", "path", path, "status", resp.StatusCode, "message", result.Message)
	}
	return &result, nil
}

// FetchUser loads the profile with the given id. Any failure, including a non-2xx status, wraps [shared.ErrFetchUser].
func (c *AuthClient) FetchUser(ctx context.Context, id int64) (*models.User, error) {
	path := fmt.Sprintf("/auth/user/%d", id)
	resp, err := c.api.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchUser, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", shared.ErrFetchUser, resp.StatusCode)
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchUser, err)
	}
	return &user, nil
}

// UpdateUser replaces the profile with the given id and returns the stored record.
// Failures are an [*UpdateError] whose Message is the server message when one was sent.
func (c *AuthClient) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error) {
	path := fmt.Sprintf("/auth/user/%d", id)
	resp, err := c.api.Put(ctx, path, req)
	if err != nil {
		return nil, &UpdateError{Message: MsgUpdateNetwork, Cause: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
	}

	if !resp.OK() {
		var body struct {
			Message string `json:"message"`
		}
		if decodeErr := resp.Decode(&body); decodeErr == nil && body.Message != "" {
			return nil, &UpdateError{Message: body.Message}
		}
		return nil, &UpdateError{Message: MsgUpdateFailed, Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		return nil, &UpdateError{Message: MsgUpdateFailed, Cause: errors.Join(shared.ErrNetwork, err)}
	}
	return &user, nil
}
