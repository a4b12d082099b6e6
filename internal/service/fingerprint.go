package service

import (
	"encoding/base64"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"

	"golang.org/x/crypto/blake2b"
)

// DeriveFingerprint digests the fields that determine whether an existing
// session is still entitled to trust: code, device binding, active flag.
// It is a pure function of those fields, with no clock component, so a
// fingerprint minted at login stays equal to one recomputed later unless
// something it protects actually changed.
func DeriveFingerprint(v *entity.Vendor) string {
	active := byte(0)
	if v.Active {
		active = 1
	}
	payload := make([]byte, 0, len(v.Code)+len(v.DeviceBinding)+3)
	payload = append(payload, v.Code...)
	payload = append(payload, 0)
	payload = append(payload, v.DeviceBinding...)
	payload = append(payload, 0)
	payload = append(payload, active)

	sum := blake2b.Sum256(payload)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func FingerprintMatches(fingerprint string, v *entity.Vendor) bool {
	return fingerprint == DeriveFingerprint(v)
}
