package service

import (
	"time"
)

// DefaultBuiltinAdminCode is the super-admin identity seeded at startup. It
// has shipped with the portal since the first deployment and can never be
// deleted.
const DefaultBuiltinAdminCode = "DARKEYES"

type SessionTokenIssuer interface {
	IssueSessionToken(vendorCode, deviceFingerprint, sessionID, fingerprint string) (string, time.Duration, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
