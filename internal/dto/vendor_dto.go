package dto

import (
	"time"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"
)

type CreateVendorRequest struct {
	Code          string `json:"code" validate:"required,max=32"`
	Name          string `json:"name" validate:"required,max=255"`
	DeviceBinding string `json:"device_binding" validate:"omitempty,max=255"`
	Active        *bool  `json:"active" validate:"omitempty"`
	IsAdmin       bool   `json:"is_admin" validate:"omitempty"`
}

type UpdateVendorRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=255"`
	DeviceBinding *string `json:"device_binding" validate:"omitempty,max=255"`
	Active        *bool   `json:"active" validate:"omitempty"`
	IsAdmin       *bool   `json:"is_admin" validate:"omitempty"`
}

type RenameVendorRequest struct {
	NewCode string `json:"new_code" validate:"required,max=32"`
}

type RevokeSessionsResponse struct {
	Revoked int64 `json:"revoked"`
}

type SessionResponse struct {
	ID                string     `json:"id"`
	VendorCode        string     `json:"vendor_code"`
	DeviceFingerprint string     `json:"device_fingerprint"`
	RemoteAddress     *string    `json:"remote_address,omitempty"`
	StartedAt         time.Time  `json:"started_at"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
	IsActive          bool       `json:"is_active"`
}

func SessionResponsesFromEntities(sessions []entity.Session) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, SessionResponse{
			ID:                s.ID.String(),
			VendorCode:        s.VendorCode,
			DeviceFingerprint: s.DeviceFingerprint,
			RemoteAddress:     s.RemoteAddress,
			StartedAt:         s.StartedAt,
			EndedAt:           s.EndedAt,
			IsActive:          s.IsActive,
		})
	}
	return responses
}

type AccessEventResponse struct {
	ID            string    `json:"id"`
	VendorCode    string    `json:"vendor_code"`
	Device        string    `json:"device,omitempty"`
	Outcome       string    `json:"outcome"`
	RemoteAddress *string   `json:"remote_address,omitempty"`
	Metadata      any       `json:"metadata,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func AccessEventResponsesFromEntities(events []entity.AccessEvent) []AccessEventResponse {
	responses := make([]AccessEventResponse, 0, len(events))
	for _, e := range events {
		var metadata any
		if len(e.Metadata) > 0 {
			metadata = e.Metadata
		}
		responses = append(responses, AccessEventResponse{
			ID:            e.ID.String(),
			VendorCode:    e.VendorCode,
			Device:        e.Device,
			Outcome:       string(e.Outcome),
			RemoteAddress: e.RemoteAddress,
			Metadata:      metadata,
			CreatedAt:     e.CreatedAt,
		})
	}
	return responses
}
