// Package itemset implements frequent-itemset mining over a
// store.TransactionalStore using level-wise (Apriori-style) candidate
// generation: each level's candidates are joined from the previous level's
// frequent itemsets sharing a common (k-2)-prefix, then pruned by checking
// that every (k-1)-subset of a candidate is itself frequent, before support
// is counted against the store.
//
// Complexity: each level k issues O(|L(k-1)|^2) candidate joins and, for
// each surviving candidate, one store.Contains call costing O(k) bitmap
// intersections.
package itemset

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/avldata/conslat/store"
)

// ErrInvalidThreshold is returned when minsup is outside (0, 1].
var ErrInvalidThreshold = errors.New("itemset: minsup must be in (0, 1]")

// FrequentItemset pairs an itemset with its support, support having already
// been found to be >= the minsup threshold used to produce it.
type FrequentItemset struct {
	Items   *roaring.Bitmap
	Support float64
}

// candidate tracks an itemset alongside its sorted item ids, so successive
// levels can test shared-prefix joinability without re-deriving the slice
// from the bitmap on every comparison.
type candidate struct {
	ids    []store.ItemID
	bitmap *roaring.Bitmap
}

// FrequentItemsets returns every itemset in s whose support is >= minsup,
// each paired with its support. Order is deterministic given s (ascending
// item id within each level, levels in increasing size) but is not a
// contract downstream components may rely on.
//
// Fails with ErrInvalidThreshold if minsup is outside (0, 1].
func FrequentItemsets(s *store.TransactionalStore, minsup float64) ([]FrequentItemset, error) {
	if minsup <= 0 || minsup > 1 {
		return nil, ErrInvalidThreshold
	}

	n := float64(s.NumTransactions())
	var result []FrequentItemset

	level := make([]candidate, 0, s.NumItems())
	for id := 0; id < s.NumItems(); id++ {
		bm := roaring.BitmapOf(uint32(id))
		support := float64(s.Contains(bm)) / n
		if support >= minsup {
			c := candidate{ids: []store.ItemID{store.ItemID(id)}, bitmap: bm}
			level = append(level, c)
			result = append(result, FrequentItemset{Items: bm, Support: support})
		}
	}

	for k := 2; len(level) > 0; k++ {
		candidates := generateCandidates(level, k)

		next := make([]candidate, 0, len(candidates))
		for _, c := range candidates {
			support := float64(s.Contains(c.bitmap)) / n
			if support >= minsup {
				next = append(next, c)
				result = append(result, FrequentItemset{Items: c.bitmap, Support: support})
			}
		}
		level = next
	}

	return result, nil
}

// generateCandidates derives size-k candidates from a frequent level of
// size-(k-1) itemsets: two itemsets sharing their first k-2 ids are joined
// into a candidate of size k, which then survives only if every one of its
// (k-1)-subsets is itself present in level (the Apriori-gen prune).
func generateCandidates(level []candidate, k int) []candidate {
	present := make(map[string]struct{}, len(level))
	for _, c := range level {
		present[key(c.ids)] = struct{}{}
	}

	var out []candidate
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			a, b := level[i].ids, level[j].ids
			if !samePrefix(a, b, k-2) {
				continue
			}
			if a[k-2] >= b[k-2] {
				continue // canonical order: a's last id must precede b's
			}

			merged := make([]store.ItemID, k)
			copy(merged, a)
			merged[k-1] = b[k-2]

			if k > 2 && !allSubsetsFrequent(merged, present) {
				continue
			}

			ids := make([]uint32, k)
			for idx, id := range merged {
				ids[idx] = uint32(id)
			}
			out = append(out, candidate{ids: merged, bitmap: roaring.BitmapOf(ids...)})
		}
	}

	return out
}

// samePrefix reports whether a and b agree on their first n ids.
func samePrefix(a, b []store.ItemID, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// allSubsetsFrequent reports whether every (k-1)-subset of merged (each
// obtained by omitting one id) is present in the prior frequent level.
func allSubsetsFrequent(merged []store.ItemID, present map[string]struct{}) bool {
	subset := make([]store.ItemID, len(merged)-1)
	for skip := range merged {
		n := 0
		for idx, id := range merged {
			if idx == skip {
				continue
			}
			subset[n] = id
			n++
		}
		if _, ok := present[key(subset)]; !ok {
			return false
		}
	}
	return true
}

// key renders an ascending id slice as a stable map key.
func key(ids []store.ItemID) string {
	return fmt.Sprint(ids)
}
