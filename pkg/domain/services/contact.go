package services

import (
	"fmt"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// DefaultPhoneRegion is used to parse numbers written without a country code
const DefaultPhoneRegion = "NP"

// NormalizePhone validates a phone number and returns it in E.164 form.
// An empty number is allowed and returned unchanged.
func NormalizePhone(phone, region string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultPhoneRegion
	}

	parsed, err := libphonenumber.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", phone, err)
	}
	if !libphonenumber.IsValidNumber(parsed) {
		return "", fmt.Errorf("phone number %q is not valid", phone)
	}

	return libphonenumber.Format(parsed, libphonenumber.E164), nil
}
