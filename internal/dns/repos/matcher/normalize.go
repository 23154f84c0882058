package matcher

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/miekg/dns"

	"github.com/haukened/split-dns/internal/dns/domain"
)

// Normalize turns raw PRIVATE_DOMAINS entries into the canonical private
// domain list: whitespace trimmed, trailing dots removed, empties and
// duplicates dropped, order preserved. A leading dot is kept; in substring
// mode ".corp.local" only matches at a label boundary.
//
// Entries that are not domain names fail with domain.ErrConfig.
func Normalize(entries []string) ([]string, error) {
	out := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, raw := range entries {
		entry := strings.TrimSpace(raw)
		for strings.HasSuffix(entry, ".") {
			entry = strings.TrimSuffix(entry, ".")
		}
		if entry == "" || entry == "." {
			continue
		}
		if strings.ContainsFunc(entry, unicode.IsSpace) || strings.Contains(entry, ",") {
			return nil, fmt.Errorf("%w: private domain #%d %q contains a separator", domain.ErrConfig, i, raw)
		}
		if _, ok := dns.IsDomainName(strings.TrimPrefix(entry, ".")); !ok {
			return nil, fmt.Errorf("%w: private domain #%d %q is not a valid domain name", domain.ErrConfig, i, raw)
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out, nil
}
