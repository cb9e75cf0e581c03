// Package codes generates random identifiers handed to external parties.
package codes

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrInvalidLength = errors.New("invalid code length")

// OrderSuffixBytes gives 8 hex characters of entropy on an order id.
const OrderSuffixBytes = 4

// GenerateSecureToken returns 2*byteLength hex characters.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength < 1 {
		return "", ErrInvalidLength
	}
	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// OrderID builds a gateway order id: prefix, the unix millisecond of at,
// then a random hex suffix. Ids sort by creation time within a prefix.
func OrderID(prefix string, at time.Time) (string, error) {
	suffix, err := GenerateSecureToken(OrderSuffixBytes)
	if err != nil {
		return "", err
	}
	return prefix + strconv.FormatInt(at.UnixMilli(), 10) + suffix, nil
}
