package game

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// Source is the randomness the simulation draws from.
// *rand.Rand satisfies it; tests may substitute scripted sources.
type Source interface {
	Float64() float64
	IntN(n int) int
}

func seededPCG(seed int64, salt string) *rand.PCG {
	// #nosec G404
	return rand.NewPCG(seedWord(seed, salt+":a"), seedWord(seed, salt+":b"))
}

func seededRNG(seed int64, salt string) *rand.Rand {
	return rand.New(seededPCG(seed, salt))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// randInt draws uniformly from the closed range [lo, hi].
func randInt(r Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// uniform draws uniformly from [lo, hi).
func uniform(r Source, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// sampleIndexes picks k distinct indexes from [0, n) in draw order.
func sampleIndexes(r Source, n, k int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	k = min(k, n)
	for i := 0; i < k; i++ {
		j := i + r.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func clampFloat(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
