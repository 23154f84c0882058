package utils

import "golang.org/x/net/publicsuffix"

// IsPublicSuffix reports whether name is itself an ICANN public suffix such as
// "com" or "co.uk". Unlisted TLDs like "local" or "corp" are not reported.
func IsPublicSuffix(name string) bool {
	name = CanonicalDNSName(name)
	if name == "" {
		return false
	}
	suffix, icann := publicsuffix.PublicSuffix(name)
	return icann && suffix == name
}
