package api

import (
	"context"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// AuthStatus is the session snapshot from /api/auth/status.
type AuthStatus struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
	Token         string       `json:"token,omitempty"`
}

// AdminStatus is the back-office session snapshot from /api/admin/status.
type AdminStatus struct {
	IsAdmin bool          `json:"isAdmin"`
	Admin   *models.Admin `json:"admin,omitempty"`
}

const (
	// bootstrapAttempts bounds the automatic retries of the initial auth
	// check before the connectivity error screen is shown.
	bootstrapAttempts = 3
	// bootstrapTimeout is the per-attempt ceiling on the initial auth check.
	bootstrapTimeout = 15 * time.Second
)

// Login authenticates with username/password credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthStatus, error) {
	var out AuthStatus
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	if out.Token != "" {
		c.token = out.Token
	}
	return &out, nil
}

// Logout ends the platform session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.post(ctx, "/api/auth/logout", nil, nil)
	c.token = ""
	return err
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, username, email, password, nativeLanguage string) (*AuthStatus, error) {
	var out AuthStatus
	body := map[string]string{
		"username":       username,
		"email":          email,
		"password":       password,
		"nativeLanguage": nativeLanguage,
	}
	if err := c.post(ctx, "/api/users", body, &out); err != nil {
		return nil, err
	}
	if out.Token != "" {
		c.token = out.Token
	}
	return &out, nil
}

// AuthStatus fetches the current session state once.
func (c *Client) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	var out AuthStatus
	if err := c.get(ctx, "/api/auth/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bootstrap runs the initial auth check with a bounded retry: each attempt is
// capped at the bootstrap timeout and up to three attempts are made before
// the error escalates to the caller's connectivity screen. An authorization
// response is not retried; only transport failures are.
func (c *Client) Bootstrap(ctx context.Context) (*AuthStatus, error) {
	return c.bootstrap(ctx, bootstrapAttempts, bootstrapTimeout)
}

func (c *Client) bootstrap(ctx context.Context, attempts int, timeout time.Duration) (*AuthStatus, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			jww.WARN.Printf("auth check timed out, retrying (attempt %d/%d)", i+1, attempts)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		status, err := c.AuthStatus(attemptCtx)
		cancel()
		if err == nil {
			return status, nil
		}
		if IsAuthError(err) {
			// A definitive "not logged in" is an answer, not an outage.
			return &AuthStatus{Authenticated: false}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Wrap(lastErr, "auth check failed after retries")
}

// AdminLogin authenticates against the back-office.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AdminStatus, error) {
	var out AdminStatus
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, "/api/admin/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminStatus fetches the back-office session state.
func (c *Client) AdminStatus(ctx context.Context) (*AdminStatus, error) {
	var out AdminStatus
	if err := c.get(ctx, "/api/admin/status", &out); err != nil {
		if IsAuthError(err) {
			return &AdminStatus{IsAdmin: false}, nil
		}
		return nil, err
	}
	return &out, nil
}

// UpdateProfile saves profile edits for the authenticated user.
func (c *Client) UpdateProfile(ctx context.Context, user models.User) (*models.User, error) {
	var out models.User
	if err := c.put(ctx, "/api/profile", user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
