package gen

import "github.com/segmentio/fasthash/fnv1a"

// Rand is a small deterministic LCG stream. It is not safe for concurrent use.
type Rand struct {
	state uint64
}

// NewRand returns a stream seeded with s.
func NewRand(s uint64) *Rand {
	r := &Rand{state: s}
	r.next()
	return r
}

func (r *Rand) next() uint64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

// Intn returns a value in [0, n). n must be positive.
func (r *Rand) Intn(n int) int {
	return int((r.next() >> 33) % uint64(n))
}

// IntRange returns a value in [lo, hi].
func (r *Rand) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// FloatRange returns a value in [lo, hi].
func (r *Rand) FloatRange(lo, hi float64) float64 {
	u := float64(r.next()>>11) / (1<<53 - 1)
	return lo + u*(hi-lo)
}

// Bool returns true with probability p.
func (r *Rand) Bool(p float64) bool {
	return r.Float64() < p
}

// Stream salts keep derived generators independent of each other.
const (
	saltShared uint64 = iota + 1
	saltChunk
	saltColumn
)

// mixSeed hashes the world seed, a salt and coordinates into a stream seed.
func mixSeed(seed int64, salt uint64, coords ...int) uint64 {
	h := fnv1a.HashUint64(uint64(seed))
	h = fnv1a.AddUint64(h, salt)
	for _, c := range coords {
		h = fnv1a.AddUint64(h, uint64(int64(c)))
	}
	return h
}

// SeedFromString hashes a textual seed into a world seed.
func SeedFromString(s string) int64 {
	return int64(fnv1a.HashString64(s))
}
