package entity

import (
	"time"
)

type Vendor struct {
	Code string `gorm:"type:varchar(32);primaryKey"`
	Name string `gorm:"type:varchar(255);not null"`

	// DeviceBinding pins the vendor to one device fingerprint.
	// Empty means any device is admitted.
	DeviceBinding string `gorm:"type:varchar(255)"`

	Active  bool `gorm:"default:true;not null"`
	IsAdmin bool `gorm:"default:false;not null"`

	LastAccessAt *time.Time
	AccessCount  int64 `gorm:"default:0;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
