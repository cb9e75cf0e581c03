// Package phone normalizes user-entered phone numbers with libphonenumber.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion applies to numbers written without a country code.
const DefaultRegion = "VN"

var ErrInvalid = errors.New("invalid phone number")

// Normalize parses raw and returns it in E.164 form.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}
	if region == "" {
		region = DefaultRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// NormalizeOptional passes an empty string through unchanged.
func NormalizeOptional(raw, region string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return Normalize(raw, region)
}
