package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nickle23/DistriMundoEscolar/api/middleware"
	"github.com/nickle23/DistriMundoEscolar/internal/dto"
	"github.com/nickle23/DistriMundoEscolar/internal/repository"
	"github.com/nickle23/DistriMundoEscolar/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Authority *service.SessionAuthority
	Validate  *validator.Validate
}

func NewAuthHandler(authority *service.SessionAuthority, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Authority: authority, Validate: validate}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.LoginInput{
		Code:          req.Code,
		Device:        req.Device,
		RemoteAddress: stringPtr(c.RealIP()),
	}
	result, err := h.Authority.Login(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     result.Token,
		ExpiresIn: result.ExpiresIn,
		Vendor:    dto.VendorResponseFromEntity(result.Vendor),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	vendor, ok := middleware.VendorFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	sessionID, ok := middleware.SessionIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	if err := h.Authority.Logout(c.Request().Context(), vendor.Code, sessionID, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Session returns the vendor snapshot behind a still-valid token. Reaching
// the handler at all means the middleware's re-validation passed.
func (h *AuthHandler) Session(c echo.Context) error {
	vendor, ok := middleware.VendorFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	return c.JSON(http.StatusOK, dto.SessionStateResponse{
		Vendor: dto.VendorResponseFromEntity(vendor),
	})
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"message": err.Error()})
}

func writeServiceError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrDeviceMismatch),
		errors.Is(err, service.ErrCredentialsChanged),
		errors.Is(err, service.ErrVendorGone),
		errors.Is(err, service.ErrSessionRevoked):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountDisabled):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrProtectedIdentity):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrVendorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCodeConflict):
		status = http.StatusConflict
	}
	return writeError(c, status, err)
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
