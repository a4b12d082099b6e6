package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AccessOutcome string

const (
	LoginSuccess        AccessOutcome = "login_success"
	InvalidCredentials  AccessOutcome = "invalid_credentials"
	AccountDisabled     AccessOutcome = "account_disabled"
	DeviceMismatch      AccessOutcome = "device_mismatch"
	Logout              AccessOutcome = "logout"
	ForcedLogout        AccessOutcome = "forced_logout"
	CredentialsChanged  AccessOutcome = "credentials_changed"
	CascadeInvalidation AccessOutcome = "cascade_invalidation"
)

// UnknownVendorCode is recorded when a login attempt names a code that does
// not resolve to any vendor.
const UnknownVendorCode = "unknown"

type AccessEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	VendorCode string        `gorm:"type:varchar(32);not null;index"`
	Device     string        `gorm:"type:varchar(255)"`
	Outcome    AccessOutcome `gorm:"type:varchar(32);not null"`

	RemoteAddress *string `gorm:"type:varchar(45)"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
