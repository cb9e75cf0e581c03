// Package crypto holds the signing helpers used for payment gateway payloads.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Field is one key=value pair of a signature base string.
type Field struct {
	Key   string
	Value string
}

// BaseString joins fields as k1=v1&k2=v2 in the given order, without escaping.
// Gateways that sign this way list the fields alphabetically themselves.
func BaseString(fields ...Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}

// SignHMACSHA256 returns the lowercase hex HMAC-SHA256 of data.
func SignHMACSHA256(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACSHA256 compares in constant time. sig is case-insensitive hex.
func VerifyHMACSHA256(secret, data, sig string) bool {
	want, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(sig)))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hmac.Equal(mac.Sum(nil), want)
}
