// Package auth provides optional OIDC bearer-token verification for the
// HTTP API. With no issuer configured (or bypass enabled for local
// development) requests pass through unchanged.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc"
	"github.com/labstack/echo/v4"

	"workflow-automation/backend/internal/config"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Auth verifies bearer tokens against the configured OIDC issuer.
type Auth struct {
	verifier *oidc.IDTokenVerifier
	logger   Logger
	bypass   bool
}

// New creates an Auth from the application configuration. It contacts
// the issuer's discovery endpoint to prepare a token verifier unless
// auth is bypassed or no issuer is configured.
func New(ctx context.Context, cfg *config.Config, logger Logger) (*Auth, error) {
	bypass := cfg.Auth.Bypass || cfg.Auth.Issuer == ""
	if bypass {
		return &Auth{logger: logger, bypass: true}, nil
	}

	if cfg.Auth.ClientID == "" {
		return nil, errors.New("auth configuration is incomplete: client_id is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}

	// Access tokens often carry a different audience than the client id,
	// so the audience check is skipped for bearer verification.
	verifier := provider.Verifier(&oidc.Config{SkipClientIDCheck: true})

	return &Auth{verifier: verifier, logger: logger}, nil
}

// RequireAuth is echo middleware that rejects requests without a valid
// bearer token. The token subject is stored on the request context
// under "subject".
func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if a.bypass {
			return next(c)
		}

		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := a.verifier.Verify(c.Request().Context(), raw)
		if err != nil {
			a.logger.Debug("token verification failed", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token: "+err.Error())
		}

		ctx := context.WithValue(c.Request().Context(), subjectContextKey{}, token.Subject)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

type subjectContextKey struct{}

// Subject returns the verified token subject from the context, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectContextKey{}).(string)
	return s, ok
}
