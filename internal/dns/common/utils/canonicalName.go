package utils

import "strings"

// CanonicalDNSName returns a DNS name in canonical form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot
func CanonicalDNSName(name string) string {
	return strings.ToLower(TrimDNSName(name))
}

// TrimDNSName trims surrounding whitespace and all trailing dots but keeps the
// original case, for callers that match case-sensitively.
func TrimDNSName(name string) string {
	name = strings.TrimSpace(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}
