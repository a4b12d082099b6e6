package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionTokenManager seals the client session token. The signature only
// protects the envelope in transit; every claim is re-validated against the
// store on each request, so the token carries no authority of its own.
type SessionTokenManager struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

type SessionClaims struct {
	VendorCode        string `json:"vnd"`
	DeviceFingerprint string `json:"dev"`
	SessionID         string `json:"sid"`
	Fingerprint       string `json:"cfp"`
	jwt.RegisteredClaims
}

func (m SessionTokenManager) IssueSessionToken(vendorCode, deviceFingerprint, sessionID, fingerprint string) (string, time.Duration, error) {
	ttl := m.TTL
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	now := time.Now()
	claims := SessionClaims{
		VendorCode:        vendorCode,
		DeviceFingerprint: deviceFingerprint,
		SessionID:         sessionID,
		Fingerprint:       fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   vendorCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

func (m SessionTokenManager) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
