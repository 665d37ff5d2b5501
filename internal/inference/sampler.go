package inference

import (
	"errors"
	"math"
	"math/rand/v2"

	"memoryd/internal/runtime"
)

// initialSeed is the first value of the draw counter.
const initialSeed = 42

var errNoCandidates = errors.New("no finite logits to sample from")

// sampleToken picks the next token from logits. temperature <= 0 is greedy;
// otherwise logits are scaled by 1/temperature, turned into a distribution
// with softmax and one token is drawn with a generator seeded by seed.
func sampleToken(logits []float32, temperature float32, seed uint64) (runtime.Token, error) {
	if temperature <= 0 {
		return argmax(logits)
	}
	maxv := math.Inf(-1)
	for _, l := range logits {
		v := float64(l)
		if !math.IsNaN(v) && v > maxv {
			maxv = v
		}
	}
	if math.IsInf(maxv, -1) {
		return 0, errNoCandidates
	}
	inv := 1 / float64(temperature)
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		v := float64(l)
		if math.IsNaN(v) || math.IsInf(v, -1) {
			continue
		}
		p := math.Exp((v - maxv) * inv)
		probs[i] = p
		sum += p
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, errNoCandidates
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r := rng.Float64() * sum
	last := -1
	for i, p := range probs {
		if p == 0 {
			continue
		}
		last = i
		r -= p
		if r < 0 {
			return runtime.Token(i), nil
		}
	}
	// rounding left r marginally above zero
	return runtime.Token(last), nil
}

func argmax(logits []float32) (runtime.Token, error) {
	best := -1
	var bestv float32
	for i, l := range logits {
		if math.IsNaN(float64(l)) {
			continue
		}
		if best < 0 || l > bestv {
			best, bestv = i, l
		}
	}
	if best < 0 {
		return 0, errNoCandidates
	}
	return runtime.Token(best), nil
}
