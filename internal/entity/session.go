package entity

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Weak reference by code, not a foreign key: sessions are retained for
	// audit after their vendor row is deleted or renamed.
	VendorCode string `gorm:"type:varchar(32);not null;index"`

	DeviceFingerprint string  `gorm:"type:varchar(255);not null"`
	RemoteAddress     *string `gorm:"type:varchar(45)"`

	StartedAt time.Time
	EndedAt   *time.Time

	// IsActive flips true to false exactly once; a session never reactivates.
	IsActive bool `gorm:"default:true;not null;index"`

	CreatedAt time.Time
}
