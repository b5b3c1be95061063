package cluster

import "math/rand/v2"

// ClassWeights is one back-buffer node's wave-pass distribution across
// classNum clients, normalized to sum to 1.
type ClassWeights []float32

// NewWaveClassDistribution deterministically reinitializes a back-buffer
// node's class distribution, per the original implementation's
// AssignBackBuffDist (DyableClusterGraph/WavePass/AccumulateHashDivision,
// CreateClusteredLinkSet): each of classNum components is drawn from
// N(0.2, 1.0), then the vector is normalized to sum to 1. rng must be
// seeded from Config.RandomSeed (never wall-clock, per the mandatory
// seed requirement) so reinitialization is reproducible across runs.
func NewWaveClassDistribution(rng *rand.Rand, classNum int) ClassWeights {
	dist := make(ClassWeights, classNum)
	var sum float32
	for i := range dist {
		dist[i] = float32(rng.NormFloat64()*1.0 + 0.2)
		sum += dist[i]
	}
	if sum == 0 {
		return dist
	}
	for i := range dist {
		dist[i] /= sum
	}
	return dist
}

// NewSeededRand builds the deterministic RNG every wave-class
// reinitialization call must share, seeded from the pipeline's mandatory
// RandomSeed (Open Question 2).
func NewSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed>>32)+1))
}
