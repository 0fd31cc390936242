package sim

import (
	"math"
	"math/rand/v2"

	"lukechampine.com/frand"
)

// RandomSource abstract
type RandomSource interface {
	IntN(n int) int // [0, n)
}

// fast crypto-seeded source: default when no seed is given
type frandRNG struct{}

func (frandRNG) IntN(n int) int { return frand.Intn(n) }

func DefaultRNG() RandomSource { return frandRNG{} }

// Replicable RNG (tests, seeded runs)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) IntN(n int) int { return s.r.IntN(n) }

// NewSeed draws a fresh non-zero seed for runs that did not ask for one.
func NewSeed() uint64 {
	return frand.Uint64n(math.MaxUint64) + 1
}

// streamSeed mixes the run seed with a worker index so every worker gets a
// distinct, reproducible stream (splitmix64 finalizer).
func streamSeed(seed uint64, stream int) uint64 {
	x := seed + uint64(stream) + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// shuffleTop permutes cards so that the first k positions hold a uniform
// random sample in random order (partial Fisher-Yates).
func shuffleTop(cards []Card, k int, rng RandomSource) {
	n := len(cards)
	if k > n-1 {
		k = n - 1
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
