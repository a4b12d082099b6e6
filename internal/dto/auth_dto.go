package dto

import (
	"time"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"
)

type LoginRequest struct {
	Code   string `json:"code" validate:"required,max=32"`
	Device string `json:"device" validate:"required,max=255"`
}

type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expires_in"`
	Vendor    VendorResponse `json:"vendor"`
}

type SessionStateResponse struct {
	Vendor VendorResponse `json:"vendor"`
}

type VendorResponse struct {
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	DeviceBinding string     `json:"device_binding,omitempty"`
	Active        bool       `json:"active"`
	IsAdmin       bool       `json:"is_admin"`
	LastAccessAt  *time.Time `json:"last_access_at,omitempty"`
	AccessCount   int64      `json:"access_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

func VendorResponseFromEntity(vendor *entity.Vendor) VendorResponse {
	return VendorResponse{
		Code:          vendor.Code,
		Name:          vendor.Name,
		DeviceBinding: vendor.DeviceBinding,
		Active:        vendor.Active,
		IsAdmin:       vendor.IsAdmin,
		LastAccessAt:  vendor.LastAccessAt,
		AccessCount:   vendor.AccessCount,
		CreatedAt:     vendor.CreatedAt,
	}
}

func VendorResponsesFromEntities(vendors []entity.Vendor) []VendorResponse {
	responses := make([]VendorResponse, 0, len(vendors))
	for i := range vendors {
		responses = append(responses, VendorResponseFromEntity(&vendors[i]))
	}
	return responses
}
