package services

import (
	"math/rand/v2"
)

// sampleQuestionIDs draws up to count question IDs uniformly without
// replacement. When the bank holds count questions or fewer, every ID is
// returned (still in random order). The input slice is never mutated.
func sampleQuestionIDs(ids []uint, count int) []uint {
	sampled := make([]uint, len(ids))
	copy(sampled, ids)

	rand.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})

	if count > 0 && count < len(sampled) {
		sampled = sampled[:count]
	}
	return sampled
}
