package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"
	"github.com/nickle23/DistriMundoEscolar/internal/repository"
	"github.com/nickle23/DistriMundoEscolar/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// SessionAuthority turns a (vendor code, device fingerprint) pair into a
// trusted session and re-validates that trust on every request. It holds no
// state of its own; everything lives in the store, so a vendor edit is
// observed by the very next validation.
type SessionAuthority struct {
	vendors  repository.VendorRepository
	sessions repository.SessionRepository
	events   repository.AccessEventRepository

	tokens SessionTokenIssuer
	clock  Clock
	logger *logrus.Logger
}

func NewSessionAuthority(
	vendors repository.VendorRepository,
	sessions repository.SessionRepository,
	events repository.AccessEventRepository,
	tokens SessionTokenIssuer,
	clock Clock,
	logger *logrus.Logger,
) *SessionAuthority {
	return &SessionAuthority{
		vendors:  vendors,
		sessions: sessions,
		events:   events,
		tokens:   tokens,
		clock:    clock,
		logger:   logger,
	}
}

func (s *SessionAuthority) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	code := utils.NormalizeVendorCode(input.Code)
	device := utils.NormalizeDevice(input.Device)
	if code == "" || device == "" {
		return nil, ErrInvalidInput
	}

	vendor, err := s.vendors.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		s.logAccess(ctx, entity.UnknownVendorCode, device, entity.InvalidCredentials, input.RemoteAddress, map[string]any{"code": code})
		return nil, ErrInvalidCredentials
	}
	if !vendor.Active {
		s.logAccess(ctx, vendor.Code, device, entity.AccountDisabled, input.RemoteAddress, nil)
		return nil, ErrAccountDisabled
	}
	if vendor.DeviceBinding != "" && vendor.DeviceBinding != device {
		s.logAccess(ctx, vendor.Code, device, entity.DeviceMismatch, input.RemoteAddress, nil)
		return nil, ErrDeviceMismatch
	}

	now := s.now()
	session := &entity.Session{
		ID:                uuid.New(),
		VendorCode:        vendor.Code,
		DeviceFingerprint: device,
		RemoteAddress:     input.RemoteAddress,
		StartedAt:         now,
		IsActive:          true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	vendor.AccessCount++
	vendor.LastAccessAt = &now
	if err := s.vendors.Update(ctx, vendor); err != nil {
		return nil, err
	}

	fingerprint := DeriveFingerprint(vendor)
	token, ttl, err := s.tokens.IssueSessionToken(vendor.Code, device, session.ID.String(), fingerprint)
	if err != nil {
		return nil, err
	}

	s.logAccess(ctx, vendor.Code, device, entity.LoginSuccess, input.RemoteAddress, map[string]any{"session_id": session.ID.String()})
	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
		Vendor:    vendor,
	}, nil
}

// Validate re-derives the credential fingerprint from the vendor's current
// state and compares it against the one minted at login. Any mismatch fails
// closed and revokes every outstanding session for that identity: a detected
// mismatch means every sibling session is equally suspect.
func (s *SessionAuthority) Validate(ctx context.Context, vendorCode string, sessionID uuid.UUID, storedFingerprint string) (*entity.Vendor, error) {
	vendor, err := s.vendors.FindByCode(ctx, vendorCode)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorGone
	}

	if !FingerprintMatches(storedFingerprint, vendor) {
		count, revokeErr := s.sessions.RevokeAllByVendor(ctx, vendor.Code)
		if revokeErr != nil {
			s.logger.WithError(revokeErr).WithField("vendor", vendor.Code).Warn("cascade invalidation failed")
		}
		s.logAccess(ctx, vendor.Code, "", entity.CredentialsChanged, nil, map[string]any{"revoked": count})
		return nil, ErrCredentialsChanged
	}

	// Admins are trusted across devices, so the registry liveness check is
	// skipped for them. The fingerprint check above still applies.
	if !vendor.IsAdmin {
		live, err := s.sessions.IsLive(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if !live {
			return nil, ErrSessionRevoked
		}
	}
	return vendor, nil
}

// Logout ends only the caller's own session, never its siblings.
func (s *SessionAuthority) Logout(ctx context.Context, vendorCode string, sessionID uuid.UUID, remoteAddress *string) error {
	if err := s.sessions.End(ctx, sessionID); err != nil {
		return err
	}
	s.logAccess(ctx, vendorCode, "", entity.Logout, remoteAddress, map[string]any{"session_id": sessionID.String()})
	return nil
}

// ForceLogout revokes every live session for the target vendor. Admin-only;
// the route guard enforces that.
func (s *SessionAuthority) ForceLogout(ctx context.Context, targetCode, actorCode string, remoteAddress *string) (int64, error) {
	targetCode = utils.NormalizeVendorCode(targetCode)
	if targetCode == "" {
		return 0, ErrInvalidInput
	}
	count, err := s.sessions.RevokeAllByVendor(ctx, targetCode)
	if err != nil {
		return 0, err
	}
	s.logAccess(ctx, targetCode, "", entity.ForcedLogout, remoteAddress, map[string]any{"revoked": count, "actor": actorCode})
	return count, nil
}

func (s *SessionAuthority) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

// logAccess reports to the audit sink. Fire and forget: audit failure must
// never block an authentication decision.
func (s *SessionAuthority) logAccess(
	ctx context.Context,
	vendorCode string,
	device string,
	outcome entity.AccessOutcome,
	remoteAddress *string,
	metadata map[string]any,
) {
	var payload datatypes.JSON
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			s.logger.WithError(err).Warn("access event metadata not serializable")
		} else {
			payload = datatypes.JSON(raw)
		}
	}
	event := &entity.AccessEvent{
		ID:            uuid.New(),
		VendorCode:    vendorCode,
		Device:        device,
		Outcome:       outcome,
		RemoteAddress: remoteAddress,
		Metadata:      payload,
		CreatedAt:     s.now(),
	}
	if err := s.events.Log(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"vendor":  vendorCode,
			"outcome": outcome,
		}).Warn("access event not recorded")
	}
}
