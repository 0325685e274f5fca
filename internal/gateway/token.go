package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token issued by the session layer.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

type tokenKey struct{}

// ContextWithToken attaches a per-request token, e.g. one forwarded from an
// inbound Authorization header.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, normalizeToken(token))
}

func tokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}

func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

func (c *Client) resolveToken(ctx context.Context) (string, error) {
	token := tokenFromContext(ctx)
	if token == "" && c.tokenSource != nil {
		t, err := c.tokenSource.Token(ctx)
		if err != nil {
			return "", &Error{Kind: KindAuthRequired, Status: 401, Message: msgAuthRequired, Detail: "token source: " + err.Error(), Err: err}
		}
		token = normalizeToken(t)
	}
	if token == "" {
		token = normalizeToken(c.token)
	}
	if token != "" && tokenExpired(token, c.now()) {
		return "", &Error{Kind: KindAuthRequired, Status: 401, Message: msgAuthRequired, Detail: "bearer token expired"}
	}
	return token, nil
}

// tokenExpired inspects the exp claim of a JWT without verifying it; the
// backend still owns verification. Opaque tokens are never reported expired.
func tokenExpired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(now)
}
