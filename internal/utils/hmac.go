package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SignHMAC creates a hex-encoded HMAC-SHA256 signature for a payload
func SignHMAC(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC verifies a webhook signature using constant-time comparison
func VerifyHMAC(message, signature, secret string) bool {
	expectedMAC := SignHMAC(message, secret)
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expectedMAC)) == 1
}
