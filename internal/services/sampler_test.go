package services

import (
	"testing"
)

func TestSampleQuestionIDs(t *testing.T) {
	t.Run("samples the configured count from a larger bank", func(t *testing.T) {
		bank := rangeIDs(1, 40)

		sampled := sampleQuestionIDs(bank, 25)

		if len(sampled) != 25 {
			t.Fatalf("expected 25 sampled IDs, got %d", len(sampled))
		}
		assertDistinctSubset(t, sampled, bank)
	})

	t.Run("returns the whole bank when it is smaller than the count", func(t *testing.T) {
		bank := rangeIDs(1, 10)

		sampled := sampleQuestionIDs(bank, 25)

		if len(sampled) != 10 {
			t.Fatalf("expected all 10 IDs, got %d", len(sampled))
		}
		assertDistinctSubset(t, sampled, bank)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		bank := rangeIDs(1, 40)
		before := make([]uint, len(bank))
		copy(before, bank)

		sampleQuestionIDs(bank, 25)

		for i := range bank {
			if bank[i] != before[i] {
				t.Fatalf("input slice mutated at index %d", i)
			}
		}
	})

	t.Run("non-positive count keeps every ID", func(t *testing.T) {
		sampled := sampleQuestionIDs(rangeIDs(1, 5), 0)
		if len(sampled) != 5 {
			t.Fatalf("expected 5 IDs, got %d", len(sampled))
		}
	})

	t.Run("empty bank yields empty sample", func(t *testing.T) {
		if sampled := sampleQuestionIDs(nil, 25); len(sampled) != 0 {
			t.Fatalf("expected empty sample, got %d IDs", len(sampled))
		}
	})
}

func assertDistinctSubset(t *testing.T, sampled, bank []uint) {
	t.Helper()

	inBank := make(map[uint]bool, len(bank))
	for _, id := range bank {
		inBank[id] = true
	}

	seen := make(map[uint]bool, len(sampled))
	for _, id := range sampled {
		if !inBank[id] {
			t.Errorf("sampled ID %d is not in the bank", id)
		}
		if seen[id] {
			t.Errorf("sampled ID %d appears twice", id)
		}
		seen[id] = true
	}
}
