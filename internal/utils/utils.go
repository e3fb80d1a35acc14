package utils

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

// GenerateRandomString creates a random string of the specified length
func GenerateRandomString(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:length], nil
}

// GenerateReferralCode creates a referral code from an unambiguous alphabet
func GenerateReferralCode(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)

	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}

	return string(result)
}

// GenerateReference creates a unique reference for deposits, investments and
// withdrawals, e.g. INV_20260831150405_A1B2C3D4
func GenerateReference(prefix string) string {
	timestamp := time.Now().Format("20060102150405")
	random, _ := GenerateRandomString(8)
	return strings.ToUpper(fmt.Sprintf("%s_%s_%s", prefix, timestamp, random))
}

// GenerateOTPSecret generates a new TOTP secret
func GenerateOTPSecret() string {
	secretBytes := make([]byte, 20)
	rand.Read(secretBytes)
	return base32.StdEncoding.EncodeToString(secretBytes)
}

// ValidateTOTP validates a TOTP code against a secret
func ValidateTOTP(secret string, code string) bool {
	return totp.Validate(code, secret)
}

// GenerateOTPQRCode builds the otpauth URL used by authenticator apps
func GenerateOTPQRCode(secret string, accountName string, issuer string) string {
	accountName = url.QueryEscape(accountName)
	issuer = url.QueryEscape(issuer)
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		issuer, accountName, secret, issuer)
}
