package matcher

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the suffix matcher needs from a Bloom filter.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory builds filters sized for a known number of keys.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache memoizes name → matched decisions with basic metrics.
// It caches routing decisions only, never answers.
type DecisionCache interface {
	Get(name string) (matched bool, ok bool)
	Put(name string, matched bool)
	Stats() (hits, misses, evictions uint64)
}
