package csrf

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type Config struct {
	CookieName string
	HeaderName string

	CookiePath string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	// EnforceSameOrigin rejects unsafe requests whose Origin (or Referer)
	// does not match the request host.
	EnforceSameOrigin bool

	Skipper middleware.Skipper
}

func DefaultConfig() Config {
	return Config{
		CookieName:        "XSRF-TOKEN",
		HeaderName:        "X-CSRF-Token",
		CookiePath:        "/",
		SameSite:          http.SameSiteLaxMode,
		MaxAge:            24 * time.Hour,
		EnforceSameOrigin: true,
	}
}

// Middleware is double-submit cookie protection: the XSRF-TOKEN cookie value
// must be echoed back in the X-CSRF-Token header on unsafe methods.
func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.Skipper == nil {
		cfg.Skipper = middleware.DefaultSkipper
	}

	token := middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        cfg.Skipper,
		TokenLookup:    "header:" + cfg.HeaderName,
		CookieName:     cfg.CookieName,
		CookiePath:     cfg.CookiePath,
		CookieMaxAge:   int(cfg.MaxAge.Seconds()),
		CookieSecure:   cfg.Secure,
		CookieHTTPOnly: false,
		CookieSameSite: cfg.SameSite,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := token(next)
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}
			if cfg.EnforceSameOrigin && !safeMethod(c.Request().Method) && !sameOrigin(c.Request()) {
				logging.FromContext(c.Request().Context()).Warn("csrf_rejected", "reason", "cross origin")
				return transport.Fail(c, http.StatusForbidden, "forbidden", "Invalid origin")
			}
			return guarded(c)
		}
	}
}

func safeMethod(m string) bool {
	switch strings.ToUpper(m) {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		ref := r.Header.Get("Referer")
		if ref == "" {
			return false
		}
		origin = ref
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, schemeOf(r)) && strings.EqualFold(u.Host, r.Host)
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
