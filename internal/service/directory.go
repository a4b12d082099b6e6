package service

import (
	"context"
	"encoding/json"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"
	"github.com/nickle23/DistriMundoEscolar/internal/repository"
	"github.com/nickle23/DistriMundoEscolar/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// DirectoryService is the administrative surface over the vendor directory.
// Any mutation that changes what a credential fingerprint protects (code,
// device binding, active flag) revokes the affected sessions inside the same
// transaction as the vendor write, so no concurrent validator can see the new
// vendor state while an old session is still reported live.
type DirectoryService struct {
	uow     repository.UnitOfWork
	vendors repository.VendorRepository
	events  repository.AccessEventRepository
	clock   Clock
	logger  *logrus.Logger

	builtinAdminCode string
}

type UpdateVendorInput struct {
	Name          *string
	DeviceBinding *string
	Active        *bool
	IsAdmin       *bool
}

func NewDirectoryService(
	uow repository.UnitOfWork,
	vendors repository.VendorRepository,
	events repository.AccessEventRepository,
	clock Clock,
	logger *logrus.Logger,
	builtinAdminCode string,
) *DirectoryService {
	if builtinAdminCode == "" {
		builtinAdminCode = DefaultBuiltinAdminCode
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &DirectoryService{
		uow:              uow,
		vendors:          vendors,
		events:           events,
		clock:            clock,
		logger:           logger,
		builtinAdminCode: builtinAdminCode,
	}
}

// EnsureBuiltinAdmin seeds the super-admin vendor if it is missing. Called at
// startup; the portal must never come up without it.
func (s *DirectoryService) EnsureBuiltinAdmin(ctx context.Context) error {
	existing, err := s.vendors.FindByCode(ctx, s.builtinAdminCode)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	admin := &entity.Vendor{
		Code:    s.builtinAdminCode,
		Name:    "Administrador Principal",
		Active:  true,
		IsAdmin: true,
	}
	return s.vendors.Create(ctx, admin)
}

func (s *DirectoryService) GetVendor(ctx context.Context, code string) (*entity.Vendor, error) {
	code = utils.NormalizeVendorCode(code)
	vendor, err := s.vendors.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	return vendor, nil
}

func (s *DirectoryService) ListVendors(ctx context.Context, limit, offset int) ([]entity.Vendor, error) {
	return s.vendors.List(ctx, limit, offset)
}

func (s *DirectoryService) CreateVendor(ctx context.Context, vendor *entity.Vendor) error {
	vendor.Code = utils.NormalizeVendorCode(vendor.Code)
	if vendor.Code == "" || vendor.Name == "" {
		return ErrInvalidInput
	}
	existing, err := s.vendors.FindByCode(ctx, vendor.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrCodeConflict
	}
	return s.vendors.Create(ctx, vendor)
}

// UpdateVendor applies the given changes. If the device binding moves or the
// vendor is deactivated, every live session is revoked in the same
// transaction that writes the vendor row, never after it.
func (s *DirectoryService) UpdateVendor(ctx context.Context, code string, input UpdateVendorInput) (*entity.Vendor, error) {
	code = utils.NormalizeVendorCode(code)
	var updated *entity.Vendor
	revoked := int64(-1)

	err := s.uow.Do(ctx, func(vendors repository.VendorRepository, sessions repository.SessionRepository) error {
		vendor, err := vendors.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		if vendor == nil {
			return ErrVendorNotFound
		}

		cascade := false
		if input.DeviceBinding != nil && *input.DeviceBinding != vendor.DeviceBinding {
			cascade = true
		}
		if input.Active != nil && !*input.Active && vendor.Active {
			cascade = true
		}

		if cascade {
			count, err := sessions.RevokeAllByVendor(ctx, vendor.Code)
			if err != nil {
				return err
			}
			revoked = count
		}

		if input.Name != nil {
			vendor.Name = *input.Name
		}
		if input.DeviceBinding != nil {
			vendor.DeviceBinding = *input.DeviceBinding
		}
		if input.Active != nil {
			vendor.Active = *input.Active
		}
		if input.IsAdmin != nil {
			vendor.IsAdmin = *input.IsAdmin
		}
		if err := vendors.Update(ctx, vendor); err != nil {
			return err
		}
		updated = vendor
		return nil
	})
	if err != nil {
		return nil, err
	}
	if revoked >= 0 {
		s.auditCascade(ctx, code, revoked)
	}
	return updated, nil
}

// RenameVendor retires oldCode and creates newCode with inherited history, as
// one atomic move: no observer sees both codes live, nor neither. Sessions
// under both codes are revoked in the same transaction. Revoking the new
// code too closes the window where a client already holds a token naming it.
func (s *DirectoryService) RenameVendor(ctx context.Context, oldCode, newCode string) (*entity.Vendor, error) {
	oldCode = utils.NormalizeVendorCode(oldCode)
	newCode = utils.NormalizeVendorCode(newCode)
	if oldCode == "" || newCode == "" || oldCode == newCode {
		return nil, ErrInvalidInput
	}
	if oldCode == s.builtinAdminCode {
		return nil, repository.ErrProtectedIdentity
	}

	var renamed *entity.Vendor
	var revoked int64
	err := s.uow.Do(ctx, func(vendors repository.VendorRepository, sessions repository.SessionRepository) error {
		vendor, err := vendors.FindByCode(ctx, oldCode)
		if err != nil {
			return err
		}
		if vendor == nil {
			return ErrVendorNotFound
		}
		conflict, err := vendors.FindByCode(ctx, newCode)
		if err != nil {
			return err
		}
		if conflict != nil {
			return ErrCodeConflict
		}

		oldCount, err := sessions.RevokeAllByVendor(ctx, oldCode)
		if err != nil {
			return err
		}
		newCount, err := sessions.RevokeAllByVendor(ctx, newCode)
		if err != nil {
			return err
		}
		revoked = oldCount + newCount

		if err := vendors.Delete(ctx, oldCode); err != nil {
			return err
		}
		moved := &entity.Vendor{
			Code:          newCode,
			Name:          vendor.Name,
			DeviceBinding: vendor.DeviceBinding,
			Active:        vendor.Active,
			IsAdmin:       vendor.IsAdmin,
			LastAccessAt:  vendor.LastAccessAt,
			AccessCount:   vendor.AccessCount,
			CreatedAt:     vendor.CreatedAt,
		}
		if err := vendors.Create(ctx, moved); err != nil {
			return err
		}
		renamed = moved
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.auditCascade(ctx, oldCode, revoked)
	return renamed, nil
}

func (s *DirectoryService) DeleteVendor(ctx context.Context, code string) error {
	code = utils.NormalizeVendorCode(code)
	if code == s.builtinAdminCode {
		return repository.ErrProtectedIdentity
	}
	var revoked int64
	err := s.uow.Do(ctx, func(vendors repository.VendorRepository, sessions repository.SessionRepository) error {
		vendor, err := vendors.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		if vendor == nil {
			return ErrVendorNotFound
		}
		count, err := sessions.RevokeAllByVendor(ctx, code)
		if err != nil {
			return err
		}
		revoked = count
		return vendors.Delete(ctx, code)
	})
	if err != nil {
		return err
	}
	s.auditCascade(ctx, code, revoked)
	return nil
}

// auditCascade reports a cascade invalidation to the audit sink. Best effort:
// the write happens outside the mutation's success path and never rolls the
// mutation back.
func (s *DirectoryService) auditCascade(ctx context.Context, vendorCode string, revoked int64) {
	raw, _ := json.Marshal(map[string]any{"revoked": revoked})
	event := &entity.AccessEvent{
		ID:         uuid.New(),
		VendorCode: vendorCode,
		Outcome:    entity.CascadeInvalidation,
		Metadata:   datatypes.JSON(raw),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.events.Log(ctx, event); err != nil {
		s.logger.WithError(err).WithField("vendor", vendorCode).Warn("cascade event not recorded")
	}
}
