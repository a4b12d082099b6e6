package middleware

import (
	"github.com/nickle23/DistriMundoEscolar/internal/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextVendorKey  = "auth_vendor"
	contextSessionKey = "auth_session_id"
)

func SetAuthContext(c echo.Context, vendor *entity.Vendor, sessionID uuid.UUID) {
	c.Set(contextVendorKey, vendor)
	c.Set(contextSessionKey, sessionID)
}

func VendorFromContext(c echo.Context) (*entity.Vendor, bool) {
	value := c.Get(contextVendorKey)
	vendor, ok := value.(*entity.Vendor)
	return vendor, ok && vendor != nil
}

func SessionIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(contextSessionKey)
	sessionID, ok := value.(uuid.UUID)
	return sessionID, ok
}
