// Package matcher decides whether a query name belongs to the private domain
// set. A Matcher is built once at startup and is read-only afterwards, so all
// request goroutines share it without locking.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/haukened/split-dns/internal/dns/common/utils"
	"github.com/haukened/split-dns/internal/dns/domain"
)

// Mode selects how a name is compared with the private domains.
type Mode string

const (
	// ModeSubstring matches when any private domain occurs anywhere in the
	// name: "corp.local" matches "notcorp.local.example.com". This is the
	// default and the historical behavior of the forwarder.
	ModeSubstring Mode = "substring"

	// ModeSuffix matches when the name equals a private domain or ends with
	// "." plus a private domain.
	ModeSuffix Mode = "suffix"
)

const defaultFalsePositiveRate = 0.01

// Options configures New.
type Options struct {
	// Domains is the raw private domain list; it is passed through Normalize.
	Domains []string

	// Mode defaults to ModeSubstring.
	Mode Mode

	// CaseInsensitive folds case before comparing. Off by default: names are
	// matched exactly as received.
	CaseInsensitive bool

	// RequireDomains turns an empty domain list into a configuration error
	// instead of a matcher that never matches.
	RequireDomains bool

	// Cache optionally memoizes decisions per name.
	Cache DecisionCache

	// Blooms builds the suffix-mode prefilter. Without it suffix mode does
	// exact set lookups only.
	Blooms BloomFactory

	// FalsePositiveRate sizes the prefilter; defaults to 1%.
	FalsePositiveRate float64
}

// Matcher is the compiled private-domain predicate.
type Matcher struct {
	mode            Mode
	caseInsensitive bool
	domains         []string

	pattern  *regexp.Regexp
	suffixes map[string]struct{}
	filter   BloomFilter
	cache    DecisionCache
}

// New normalizes the domain list and compiles the predicate. An empty list
// yields a matcher that never matches.
func New(opts Options) (*Matcher, error) {
	domains, err := Normalize(opts.Domains)
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 && opts.RequireDomains {
		return nil, fmt.Errorf("%w: no private domains configured", domain.ErrConfig)
	}
	if opts.Mode == "" {
		opts.Mode = ModeSubstring
	}

	m := &Matcher{
		mode:            opts.Mode,
		caseInsensitive: opts.CaseInsensitive,
		domains:         domains,
		cache:           opts.Cache,
	}

	switch opts.Mode {
	case ModeSubstring:
		m.pattern, err = compileAlternation(domains, opts.CaseInsensitive)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
	case ModeSuffix:
		m.buildSuffixSet(domains, opts.Blooms, opts.FalsePositiveRate)
	default:
		return nil, fmt.Errorf("%w: unknown match mode %q", domain.ErrConfig, opts.Mode)
	}
	return m, nil
}

// compileAlternation escapes every domain and joins them with "|". It returns
// nil for an empty list; an empty pattern would match every name.
func compileAlternation(domains []string, caseInsensitive bool) (*regexp.Regexp, error) {
	if len(domains) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(domains))
	for i, d := range domains {
		quoted[i] = regexp.QuoteMeta(d)
	}
	expr := strings.Join(quoted, "|")
	if caseInsensitive {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

func (m *Matcher) buildSuffixSet(domains []string, blooms BloomFactory, fpRate float64) {
	m.suffixes = make(map[string]struct{}, len(domains))
	for _, d := range domains {
		m.suffixes[m.suffixKey(strings.TrimPrefix(d, "."))] = struct{}{}
	}
	if blooms == nil || len(m.suffixes) == 0 {
		return
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = defaultFalsePositiveRate
	}
	m.filter = blooms.New(uint64(len(m.suffixes)), fpRate)
	for s := range m.suffixes {
		m.filter.Add([]byte(s))
	}
}

func (m *Matcher) suffixKey(name string) string {
	if m.caseInsensitive {
		return utils.CanonicalDNSName(name)
	}
	return utils.TrimDNSName(name)
}

// Matches reports whether name belongs to the private domain set.
func (m *Matcher) Matches(name string) bool {
	if len(m.domains) == 0 {
		return false
	}
	if m.cache != nil {
		if matched, ok := m.cache.Get(name); ok {
			return matched
		}
	}

	var matched bool
	if m.mode == ModeSuffix {
		matched = m.matchSuffix(name)
	} else {
		matched = m.pattern.MatchString(name)
	}

	if m.cache != nil {
		m.cache.Put(name, matched)
	}
	return matched
}

// matchSuffix walks the name's label-boundary suffixes from longest to shortest.
func (m *Matcher) matchSuffix(name string) bool {
	s := m.suffixKey(name)
	for s != "" {
		if m.filter == nil || m.filter.MightContain([]byte(s)) {
			if _, ok := m.suffixes[s]; ok {
				return true
			}
		}
		i := strings.IndexByte(s, '.')
		if i < 0 {
			break
		}
		s = s[i+1:]
	}
	return false
}

// Domains returns a copy of the normalized private domain list.
func (m *Matcher) Domains() []string {
	out := make([]string, len(m.domains))
	copy(out, m.domains)
	return out
}

// Mode returns the active match mode.
func (m *Matcher) Mode() Mode {
	return m.mode
}

// CacheStats returns decision cache counters, all zero without a cache.
func (m *Matcher) CacheStats() (hits, misses, evictions uint64) {
	if m.cache == nil {
		return 0, 0, 0
	}
	return m.cache.Stats()
}
