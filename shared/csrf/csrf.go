package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

const (
	TokenLength = 32 // bytes
	CookieName  = "csrf_token"
	HeaderName  = "X-CSRF-Token"
)

// GenerateToken creates a cryptographically secure random token, hex-encoded.
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ValidateToken compares the cookie token with the token echoed in the header.
func ValidateToken(cookieToken, headerToken string) bool {
	if cookieToken == "" || headerToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) == 1
}
