package handler

import (
	"errors"
	"net/http"

	"github.com/nickle23/DistriMundoEscolar/api/middleware"
	"github.com/nickle23/DistriMundoEscolar/internal/dto"
	"github.com/nickle23/DistriMundoEscolar/internal/entity"
	"github.com/nickle23/DistriMundoEscolar/internal/repository"
	"github.com/nickle23/DistriMundoEscolar/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// VendorHandler is the admin surface: vendor CRUD, rename, forced logout, and
// the audit views the panel shows.
type VendorHandler struct {
	Directory *service.DirectoryService
	Authority *service.SessionAuthority
	Sessions  repository.SessionRepository
	Events    repository.AccessEventRepository
	Validate  *validator.Validate
}

func NewVendorHandler(
	directory *service.DirectoryService,
	authority *service.SessionAuthority,
	sessions repository.SessionRepository,
	events repository.AccessEventRepository,
	validate *validator.Validate,
) *VendorHandler {
	return &VendorHandler{
		Directory: directory,
		Authority: authority,
		Sessions:  sessions,
		Events:    events,
		Validate:  validate,
	}
}

func (h *VendorHandler) List(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	vendors, err := h.Directory.ListVendors(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.VendorResponsesFromEntities(vendors))
}

func (h *VendorHandler) Get(c echo.Context) error {
	vendor, err := h.Directory.GetVendor(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.VendorResponseFromEntity(vendor))
}

func (h *VendorHandler) Create(c echo.Context) error {
	var req dto.CreateVendorRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	vendor := &entity.Vendor{
		Code:          req.Code,
		Name:          req.Name,
		DeviceBinding: req.DeviceBinding,
		Active:        active,
		IsAdmin:       req.IsAdmin,
	}
	if err := h.Directory.CreateVendor(c.Request().Context(), vendor); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.VendorResponseFromEntity(vendor))
}

func (h *VendorHandler) Update(c echo.Context) error {
	var req dto.UpdateVendorRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.UpdateVendorInput{
		Name:          req.Name,
		DeviceBinding: req.DeviceBinding,
		Active:        req.Active,
		IsAdmin:       req.IsAdmin,
	}
	vendor, err := h.Directory.UpdateVendor(c.Request().Context(), c.Param("code"), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.VendorResponseFromEntity(vendor))
}

func (h *VendorHandler) Rename(c echo.Context) error {
	var req dto.RenameVendorRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	vendor, err := h.Directory.RenameVendor(c.Request().Context(), c.Param("code"), req.NewCode)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.VendorResponseFromEntity(vendor))
}

func (h *VendorHandler) Delete(c echo.Context) error {
	if err := h.Directory.DeleteVendor(c.Request().Context(), c.Param("code")); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *VendorHandler) RevokeSessions(c echo.Context) error {
	actor, ok := middleware.VendorFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	count, err := h.Authority.ForceLogout(c.Request().Context(), c.Param("code"), actor.Code, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.RevokeSessionsResponse{Revoked: count})
}

func (h *VendorHandler) ListSessions(c echo.Context) error {
	vendorCode := c.QueryParam("vendor")
	liveOnly := c.QueryParam("live") == "true"
	sessions, err := h.Sessions.ListByVendor(c.Request().Context(), vendorCode, liveOnly)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.SessionResponsesFromEntities(sessions))
}

func (h *VendorHandler) ListAccessEvents(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	events, err := h.Events.List(c.Request().Context(), c.QueryParam("vendor"), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.AccessEventResponsesFromEntities(events))
}

func (h *VendorHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
