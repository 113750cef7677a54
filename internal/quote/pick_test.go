package quote

import (
	"math/rand/v2"
	"testing"
)

func TestPick_EmptyFilterReportsFalse(t *testing.T) {
	_, ok := Pick(sampleRecords(), "Nothing", rand.New(rand.NewPCG(1, 2)))
	if ok {
		t.Fatalf("Pick returned ok for a category with no records")
	}
	if _, ok := Pick(nil, FilterAll, nil); ok {
		t.Fatalf("Pick returned ok for an empty collection")
	}
}

func TestPick_StaysInsideFilter(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 9))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		r, ok := Pick(sampleRecords(), "Wisdom", rng)
		if !ok {
			t.Fatalf("Pick returned !ok")
		}
		if r.Category != "Wisdom" {
			t.Fatalf("Pick returned category %q, want Wisdom", r.Category)
		}
		seen[r.ID] = true
	}
	if !seen["1"] || !seen["3"] {
		t.Fatalf("Pick never returned one of the candidates: %v", seen)
	}
}
