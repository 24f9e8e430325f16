package csrf

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/", ok)
	e.POST("/", ok)
	return e
}

func issueCookie(t *testing.T, e *echo.Echo) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "XSRF-TOKEN" {
			return c
		}
	}
	t.Fatal("csrf cookie not set")
	return nil
}

func TestMiddleware(t *testing.T) {
	e := newEcho(DefaultConfig())
	cookie := issueCookie(t, e)

	tests := []struct {
		name   string
		origin string
		token  string
		want   int
	}{
		{name: "valid", origin: "http://example.com", token: cookie.Value, want: http.StatusNoContent},
		{name: "missing origin", token: cookie.Value, want: http.StatusForbidden},
		{name: "cross origin", origin: "https://evil.test", token: cookie.Value, want: http.StatusForbidden},
		{name: "missing token", origin: "http://example.com", want: http.StatusBadRequest},
		{name: "wrong token", origin: "http://example.com", token: "nope", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
			req.AddCookie(cookie)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.token != "" {
				req.Header.Set("X-CSRF-Token", tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMiddleware_Skipper(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Skipper = func(c echo.Context) bool { return c.Request().Header.Get("Authorization") != "" }
	e := newEcho(cfg)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSameOrigin_ForwardedProto(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Referer", "https://example.com/cart")
	assert.False(t, sameOrigin(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.True(t, sameOrigin(req))
}
