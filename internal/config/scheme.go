package config

import (
	"fmt"
	"strings"
)

// SchemeVersions enumerates the supported primer scheme versions.
var SchemeVersions = []string{"V1", "V2", "V3", "V4", "V4.1", "V1200"}

const (
	defaultMinLength = 400
	defaultMaxLength = 700

	// The 1200 bp amplicon scheme produces much longer reads, so its
	// length window differs from the standard 400 bp schemes.
	midnightMinLength = 150
	midnightMaxLength = 1200
)

// ValidSchemeVersion reports whether the value names a supported scheme.
func ValidSchemeVersion(value string) bool {
	for _, v := range SchemeVersions {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// NormalizeSchemeVersion maps a case-insensitive scheme value onto its
// canonical spelling, or errors when the value is not supported.
func NormalizeSchemeVersion(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	for _, v := range SchemeVersions {
		if strings.EqualFold(v, trimmed) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unsupported scheme version %q (supported: %s)", value, strings.Join(SchemeVersions, ", "))
}

// DefaultMinLength returns the read length filter floor for a scheme version.
func DefaultMinLength(scheme string) int {
	if strings.EqualFold(scheme, "V1200") {
		return midnightMinLength
	}
	return defaultMinLength
}

// DefaultMaxLength returns the read length filter ceiling for a scheme version.
func DefaultMaxLength(scheme string) int {
	if strings.EqualFold(scheme, "V1200") {
		return midnightMaxLength
	}
	return defaultMaxLength
}
