package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneNumber(t *testing.T) {
	cases := []struct {
		name        string
		raw         string
		countryCode string
		want        string
	}{
		{"already e164", "+919385426550", "+91", "+919385426550"},
		{"bare national number", "9385426550", "+91", "+919385426550"},
		{"formatted us number", "+1 (555) 111-2222", "+91", "+15551112222"},
		{"spaces and dashes", "93854 26-550", "+91", "+919385426550"},
		{"leading zeros trimmed", "09385426550", "+91", "+919385426550"},
		{"country code without plus", "919385426550", "+91", "+919385426550"},
		{"default country code fallback", "5551112222", "", "+15551112222"},
		{"code missing plus sign", "5551112222", "1", "+15551112222"},
		{"empty input", "", "+91", ""},
		{"too short international", "+12", "+91", ""},
		{"letters only", "abc", "+91", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhoneNumber(tc.raw, tc.countryCode))
		})
	}
}
