package repository

import (
	"context"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"

	"gorm.io/gorm"
)

type AccessEventRepository interface {
	Log(ctx context.Context, event *entity.AccessEvent) error
	List(ctx context.Context, vendorCode string, limit, offset int) ([]entity.AccessEvent, error)
}

type accessEventRepository struct {
	db *gorm.DB
}

func NewAccessEventRepository(db *gorm.DB) AccessEventRepository {
	return &accessEventRepository{db: db}
}

func (r *accessEventRepository) Log(ctx context.Context, event *entity.AccessEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *accessEventRepository) List(ctx context.Context, vendorCode string, limit, offset int) ([]entity.AccessEvent, error) {
	var events []entity.AccessEvent
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if vendorCode != "" {
		query = query.Where("vendor_code = ?", vendorCode)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
