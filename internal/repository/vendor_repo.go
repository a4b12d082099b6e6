package repository

import (
	"context"
	"errors"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"

	"gorm.io/gorm"
)

// ErrProtectedIdentity is returned when a caller tries to delete the built-in
// super-admin vendor. Enforced here, below the service layer, so the invariant
// holds even for callers that reach the store directly.
var ErrProtectedIdentity = errors.New("protected identity")

type VendorRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Vendor, error)
	Create(ctx context.Context, vendor *entity.Vendor) error
	Update(ctx context.Context, vendor *entity.Vendor) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context, limit, offset int) ([]entity.Vendor, error)
}

type vendorRepository struct {
	db            *gorm.DB
	protectedCode string
}

func NewVendorRepository(db *gorm.DB, protectedCode string) VendorRepository {
	return &vendorRepository{db: db, protectedCode: protectedCode}
}

func (r *vendorRepository) FindByCode(ctx context.Context, code string) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&vendor).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) Create(ctx context.Context, vendor *entity.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *vendorRepository) Update(ctx context.Context, vendor *entity.Vendor) error {
	return r.db.WithContext(ctx).Save(vendor).Error
}

func (r *vendorRepository) Delete(ctx context.Context, code string) error {
	if code == r.protectedCode {
		return ErrProtectedIdentity
	}
	return r.db.WithContext(ctx).
		Where("code = ?", code).
		Delete(&entity.Vendor{}).
		Error
}

func (r *vendorRepository) List(ctx context.Context, limit, offset int) ([]entity.Vendor, error) {
	var vendors []entity.Vendor
	query := r.db.WithContext(ctx).Order("code ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}
