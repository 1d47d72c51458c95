/*
auth.go - Session bootstrap against the /auth/ resource

The upstream uses cookie sessions. Login needs a CSRF cookie before the
first POST, so EnsureCSRF primes the jar with a cheap GET when the cookie
is missing. After login the session cookie lives in the jar and every
subsequent call rides on it.
*/
package clubapi

import (
	"context"
	"net/http"

	"github.com/warp/club-engine/club"
)

// EnsureCSRF primes the cookie jar with a csrftoken when it does not hold
// one yet. Idempotent and cheap; Login calls it automatically.
func (c *Client) EnsureCSRF(ctx context.Context) error {
	if c.csrfToken() != "" {
		return nil
	}
	_, err := c.do(ctx, "auth.csrf", http.MethodGet, "auth/csrf/", nil, nil)
	return err
}

// Login starts a session and returns the authenticated user.
func (c *Client) Login(ctx context.Context, username, password string) (club.Member, error) {
	payload := struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}{Username: username, Password: password}
	if err := c.checkPayload(payload); err != nil {
		return club.Member{}, err
	}
	if err := c.EnsureCSRF(ctx); err != nil {
		return club.Member{}, err
	}

	data, err := c.do(ctx, "auth.login", http.MethodPost, "auth/login/", nil, payload)
	if err != nil {
		return club.Member{}, err
	}
	raw, err := decodeOne[club.RawUser]("auth.login", data)
	if err != nil {
		return club.Member{}, err
	}
	return club.AdaptMember(raw), nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, "auth.logout", http.MethodPost, "auth/logout/", nil, struct{}{})
	return err
}

// Profile returns the session user.
func (c *Client) Profile(ctx context.Context) (club.Member, error) {
	data, err := c.do(ctx, "auth.perfil", http.MethodGet, "auth/perfil/", nil, nil)
	if err != nil {
		return club.Member{}, err
	}
	raw, err := decodeOne[club.RawUser]("auth.perfil", data)
	if err != nil {
		return club.Member{}, err
	}
	return club.AdaptMember(raw), nil
}
