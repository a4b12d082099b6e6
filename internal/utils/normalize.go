package utils

import (
	"strings"
)

// NormalizeVendorCode matches how codes are typed at the kiosk: trimmed and
// upper-cased before any lookup.
func NormalizeVendorCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func NormalizeDevice(device string) string {
	return strings.TrimSpace(device)
}
