package utils

import "strings"

const secretPrefixLen = 4

// MaskSecret keeps a short prefix of credentials that are long enough to
// identify (MinIO access keys) and hides everything else, including length.
func MaskSecret(secret string) string {
	const mask = "*****"
	secret = strings.TrimSpace(secret)
	if len(secret) < 2*secretPrefixLen {
		return mask
	}
	return secret[:secretPrefixLen] + mask
}
