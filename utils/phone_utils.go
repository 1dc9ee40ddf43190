package utils

import (
	"regexp"
	"strings"
)

var (
	phoneSeparators = regexp.MustCompile(`[\s\-()]+`)
	nonDigits       = regexp.MustCompile(`[^0-9]`)
)

// NormalizePhoneNumber normalizes a phone number to E.164 format.
//
// Accepts inputs like "+919385426550", "9385426550" (prefixed with the
// default country code), or "+1 (555) 111-2222". Returns "" when the number
// is missing or too short to be valid.
func NormalizePhoneNumber(raw, defaultCountryCode string) string {
	cleaned := phoneSeparators.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return ""
	}

	if strings.HasPrefix(cleaned, "+") {
		digits := "+" + nonDigits.ReplaceAllString(cleaned, "")
		if len(digits) < 8 {
			return ""
		}
		return digits
	}

	digitsOnly := nonDigits.ReplaceAllString(cleaned, "")
	if digitsOnly == "" {
		return ""
	}

	if strings.HasPrefix(digitsOnly, "0") {
		if trimmed := strings.TrimLeft(digitsOnly, "0"); trimmed != "" {
			digitsOnly = trimmed
		}
	}

	countryCode := defaultCountryCode
	if countryCode == "" {
		countryCode = "+1"
	}
	if !strings.HasPrefix(countryCode, "+") {
		countryCode = "+" + countryCode
	}

	// The user may have typed the country code without the '+'.
	if strings.HasPrefix(digitsOnly, strings.TrimPrefix(countryCode, "+")) {
		return "+" + digitsOnly
	}

	return countryCode + digitsOnly
}
