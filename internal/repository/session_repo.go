package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByID(ctx context.Context, sessionID uuid.UUID) (*entity.Session, error)
	IsLive(ctx context.Context, sessionID uuid.UUID) (bool, error)
	End(ctx context.Context, sessionID uuid.UUID) error
	RevokeAllByVendor(ctx context.Context, vendorCode string) (int64, error)
	ListByVendor(ctx context.Context, vendorCode string, liveOnly bool) ([]entity.Session, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, sessionID uuid.UUID) (*entity.Session, error) {
	var session entity.Session
	err := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&session).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) IsLive(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("id = ? AND is_active = true", sessionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *sessionRepository) End(ctx context.Context, sessionID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("id = ? AND is_active = true", sessionID).
		Updates(map[string]any{"is_active": false, "ended_at": &now}).
		Error
}

// RevokeAllByVendor flips every live session for the vendor and reports how
// many were flipped. Calling it again for an already-quiet vendor returns 0.
func (r *sessionRepository) RevokeAllByVendor(ctx context.Context, vendorCode string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("vendor_code = ? AND is_active = true", vendorCode).
		Updates(map[string]any{"is_active": false, "ended_at": &now})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) ListByVendor(ctx context.Context, vendorCode string, liveOnly bool) ([]entity.Session, error) {
	var sessions []entity.Session
	query := r.db.WithContext(ctx).Order("started_at DESC")
	if vendorCode != "" {
		query = query.Where("vendor_code = ?", vendorCode)
	}
	if liveOnly {
		query = query.Where("is_active = true")
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
