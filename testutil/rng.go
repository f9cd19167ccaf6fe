package testutil

import (
	"math/rand"
	"sort"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Shuffle randomizes the order of n elements using swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, swap)
}

// Timeline returns n ascending timestamps starting at start, sampled at hz
// with every interval perturbed by up to jitter (a fraction of the period).
func (r *RNG) Timeline(n int, start, hz, jitter float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	period := 1 / hz
	out := make([]float64, n)
	t := start
	for i := range out {
		out[i] = t
		t += period * (1 + jitter*(2*r.rand.Float64()-1))
	}
	return out
}

// Uniform returns n unsorted timestamps drawn from [lo, hi), each rounded to
// a multiple of step so that duplicates occur. step <= 0 disables rounding.
func (r *RNG) Uniform(n int, lo, hi, step float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		v := lo + r.rand.Float64()*(hi-lo)
		if step > 0 {
			v = float64(int((v-lo)/step))*step + lo
		}
		out[i] = v
	}
	return out
}

// Ticks returns n timestamps starting at start spaced exactly 1/hz apart.
func Ticks(start, hz float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)/hz
	}
	return out
}

// Sorted returns a sorted copy of ts.
func Sorted(ts []float64) []float64 {
	out := append([]float64(nil), ts...)
	sort.Float64s(out)
	return out
}
