package quote

import "math/rand/v2"

// EmptyPlaceholder is shown when the active filter matches nothing.
const EmptyPlaceholder = "No quotes available in this category."

// Pick chooses a record uniformly at random among those matching category.
// It reports false when nothing matches. Immediate repeats are possible.
func Pick(records []Record, category string, rng *rand.Rand) (Record, bool) {
	candidates := Filter(records, category)
	if len(candidates) == 0 {
		return Record{}, false
	}
	var idx int
	if rng != nil {
		idx = rng.IntN(len(candidates))
	} else {
		idx = rand.IntN(len(candidates))
	}
	return candidates[idx], true
}
