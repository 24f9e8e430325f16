// Package auth authenticates requests with the access token issued at login.
package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	AccessCookie = "accessToken"

	ctxSubjectID = "user_id"
	ctxKind      = "kind"
	ctxRole      = "role"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Auth struct {
	JWTSecret []byte
	// Secure marks issued cookies as HTTPS only.
	Secure bool
}

func New(secret []byte, secure bool) *Auth {
	return &Auth{JWTSecret: secret, Secure: secure}
}

// tokenFrom reads the access token from the cookie, or from an
// "Authorization: Bearer" header for API clients.
func tokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func (a *Auth) authenticate(c echo.Context) (*tokens.AccessClaims, error) {
	raw := tokenFrom(c)
	if raw == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := tokens.AccessClaimsFromToken(raw, a.JWTSecret)
	if err != nil {
		c.SetCookie(a.DeleteCookie(AccessCookie))
		return nil, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	c.Set(ctxSubjectID, uint(id))
	c.Set(ctxKind, claims.Kind)
	c.Set(ctxRole, claims.Role)
	return claims, nil
}

// SubjectID returns the authenticated user or admin id.
func SubjectID(c echo.Context) (uint, error) {
	id, ok := c.Get(ctxSubjectID).(uint)
	if !ok || id == 0 {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

func (a *Auth) CreateCookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (a *Auth) DeleteCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
