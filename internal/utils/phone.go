package utils

import "strings"

// MaskPhone hides all but the last four characters of a phone number.
// Short strings (4 characters or fewer) are fully masked so that quota
// probes can never leak a complete number.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	runes := []rune(phone)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	visible := string(runes[len(runes)-4:])
	return strings.Repeat("*", len(runes)-4) + visible
}
