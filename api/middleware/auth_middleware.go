package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"
	"github.com/nickle23/DistriMundoEscolar/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionValidator re-checks the presented token against the store's current
// state. Implemented by service.SessionAuthority.
type SessionValidator interface {
	Validate(ctx context.Context, vendorCode string, sessionID uuid.UUID, storedFingerprint string) (*entity.Vendor, error)
}

type AuthMiddleware struct {
	Tokens    *utils.SessionTokenManager
	Authority SessionValidator
}

// RequireSession parses the bearer token and re-validates every claim against
// the directory and registry. Any failure, including a store error, is a
// plain 401: the request fails closed, never open.
func (m AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.Tokens == nil || m.Authority == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		token := extractBearerToken(c.Request())
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		claims, err := m.Tokens.ParseSessionToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		sessionID, err := uuid.Parse(claims.SessionID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		vendor, err := m.Authority.Validate(c.Request().Context(), claims.VendorCode, sessionID, claims.Fingerprint)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		SetAuthContext(c, vendor, sessionID)
		return next(c)
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
