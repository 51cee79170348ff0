package settings

import "strings"

const maskPrefix = "••••••••"

// MaskSecret hides all but the last four characters of a secret.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if r := []rune(s); len(r) > 4 {
		return maskPrefix + string(r[len(r)-4:])
	}
	return maskPrefix
}

// IsMasked reports whether s is a value produced by MaskSecret.
func IsMasked(s string) bool {
	return strings.HasPrefix(s, maskPrefix)
}
