package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Togolese mobile numbers are 8 digits starting with 9, 7 or 6 (6 covers the
// sandbox test range). Accepted inputs: 90123456, +22890123456, 22890123456,
// 022890123456.
var (
	phoneCleanRegex = regexp.MustCompile(`[\s\-\(\)]`)
	localPhoneRegex = regexp.MustCompile(`^[679]\d{7}$`)
	phonePatterns   = []*regexp.Regexp{
		localPhoneRegex,
		regexp.MustCompile(`^\+228[679]\d{7}$`),
		regexp.MustCompile(`^228[679]\d{7}$`),
		regexp.MustCompile(`^0228[679]\d{7}$`),
	}
)

// Sandbox test numbers accepted by the payment provider.
var testPhoneNumbers = map[string]bool{
	"64000000": true,
	"64000001": true,
}

func IsValidTogolesePhone(phone string) bool {
	cleaned := phoneCleanRegex.ReplaceAllString(phone, "")
	for _, pattern := range phonePatterns {
		if pattern.MatchString(cleaned) {
			return true
		}
	}
	return false
}

// NormalizeTogolesePhone reduces any accepted input format to the canonical
// 8-digit local form, e.g. +22890123456 -> 90123456.
func NormalizeTogolesePhone(phone string) (string, error) {
	cleaned := phoneCleanRegex.ReplaceAllString(phone, "")

	if localPhoneRegex.MatchString(cleaned) {
		return cleaned, nil
	}
	for _, prefix := range []string{"+228", "0228", "228"} {
		if strings.HasPrefix(cleaned, prefix) && localPhoneRegex.MatchString(cleaned[len(prefix):]) {
			return cleaned[len(prefix):], nil
		}
	}
	return "", fmt.Errorf("invalid togolese phone number format: %q", phone)
}

// FormatTogolesePhone renders a number for display: 90123456 -> +228 90 12 34 56.
func FormatTogolesePhone(phone string) (string, error) {
	n, err := NormalizeTogolesePhone(phone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("+%s %s %s %s %s", CountryPrefix, n[0:2], n[2:4], n[4:6], n[6:8]), nil
}

// ToInternationalPhone converts to the international form: 90123456 -> +22890123456.
func ToInternationalPhone(phone string) (string, error) {
	n, err := NormalizeTogolesePhone(phone)
	if err != nil {
		return "", err
	}
	return "+" + CountryPrefix + n, nil
}

func IsTestPhoneNumber(phone string) bool {
	n, err := NormalizeTogolesePhone(phone)
	if err != nil {
		return false
	}
	return testPhoneNumbers[n]
}
