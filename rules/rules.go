// Package rules expands a frequent itemset into its association rules by
// walking a level-wise lattice of candidate right-hand sides: level 1 holds
// one candidate per item of the itemset, and each subsequent level merges
// sibling candidates (descendants of the same parent rule) sharing a
// (k-2)-prefix into a size-k candidate, exactly as itemset candidate
// generation joins frequent itemsets. A candidate becomes a kept rule node
// (and is recorded as an AssociationRule) only if its confidence clears the
// configured threshold; candidates that fail are pruned outright, since
// confidence falls monotonically as the right-hand side grows (the
// left-hand side shrinks, so its support can only rise).
//
// A Lattice is arena-owned: GenerateFrom rebuilds its internal tree from
// scratch for each itemset it is given, rather than maintaining one tree
// shared across itemsets.
package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/avldata/conslat/itemset"
	"github.com/avldata/conslat/store"
)

// ErrInvalidThreshold is returned when minconf is outside (0, 1].
var ErrInvalidThreshold = errors.New("rules: minconf must be in (0, 1]")

// AssociationRule is a single LHS => RHS rule derived from a frequent
// itemset, with the support of the itemset it came from and the rule's own
// confidence (support(LHS ∪ RHS) / support(LHS)).
type AssociationRule struct {
	LHS        *roaring.Bitmap
	RHS        *roaring.Bitmap
	Support    float64
	Confidence float64
}

// Render formats the rule using s to resolve item labels, e.g.
// "{bread, milk} => {diaper} (support=0.4200, confidence=0.9100)".
func (r AssociationRule) Render(s *store.TransactionalStore) string {
	return fmt.Sprintf("%s => %s (support=%.4f, confidence=%.4f)",
		renderItems(s, r.LHS), renderItems(s, r.RHS), r.Support, r.Confidence)
}

func renderItems(s *store.TransactionalStore, items *roaring.Bitmap) string {
	ids := items.ToArray()
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = s.Label(id)
	}
	return "{" + strings.Join(labels, ", ") + "}"
}

// ruleNode is one surviving candidate in the lattice: a right-hand side
// that met the confidence threshold, tracked alongside its parent so
// mergeChildren can group siblings.
type ruleNode struct {
	rhsIDs     []store.ItemID
	rhs        *roaring.Bitmap
	parent     *ruleNode
	confidence float64
}

// Lattice generates association rules from frequent itemsets against a
// fixed store and confidence threshold. Reuse one Lattice across many
// itemsets via repeated GenerateFrom calls; Collection accumulates rules
// from every call since the last Reset.
type Lattice struct {
	s          *store.TransactionalStore
	minconf    float64
	collection []AssociationRule
}

// NewLattice builds a Lattice over s requiring confidence >= minconf.
// Fails with ErrInvalidThreshold if minconf is outside (0, 1].
func NewLattice(s *store.TransactionalStore, minconf float64) (*Lattice, error) {
	if minconf <= 0 || minconf > 1 {
		return nil, ErrInvalidThreshold
	}
	return &Lattice{s: s, minconf: minconf}, nil
}

// GenerateFrom expands fi into every rule whose confidence clears the
// lattice's threshold, appending them to Collection. Itemsets of
// cardinality < 2 yield no rules: a rule needs a non-empty left- and
// right-hand side. Cancellation is checked once, at entry, matching the
// per-frequent-itemset cooperative cancellation boundary a caller
// iterating many itemsets is expected to honor.
//
// Complexity: O(2^k) worst case in the itemset size k, bounded in practice
// by the same anti-monotone confidence pruning that bounds itemset mining.
func (l *Lattice) GenerateFrom(ctx context.Context, fi itemset.FrequentItemset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := fi.Items.ToArray()
	if len(ids) < 2 {
		return nil
	}
	n := float64(l.s.NumTransactions())

	root := &ruleNode{rhs: roaring.New()}
	level := make([]*ruleNode, 0, len(ids))
	for _, id := range ids {
		rhs := roaring.BitmapOf(id)
		node := l.tryRule(fi, []store.ItemID{id}, rhs, root, n)
		if node != nil {
			level = append(level, node)
		}
	}

	for k := 2; len(level) > 0 && k < len(ids); k++ {
		level = l.mergeChildren(fi, level, k, n)
	}
	return nil
}

// tryRule evaluates the rule LHS=itemset\RHS, RHS=rhs. If its confidence
// clears the threshold it is recorded in Collection and a ruleNode is
// returned for further lattice expansion; otherwise nil, and the branch is
// pruned (no descendant RHS of a failed candidate can pass: growing RHS
// shrinks LHS, shrinking LHS can only raise support(LHS), and a larger
// denominator lowers confidence, so failure here means failure for every
// superset RHS too).
func (l *Lattice) tryRule(fi itemset.FrequentItemset, rhsIDs []store.ItemID, rhs *roaring.Bitmap, parent *ruleNode, n float64) *ruleNode {
	lhs := roaring.AndNot(fi.Items, rhs)
	if lhs.IsEmpty() {
		return nil
	}
	lhsSupportCount := l.s.Contains(lhs)
	if lhsSupportCount == 0 {
		return nil
	}
	confidence := (fi.Support * n) / float64(lhsSupportCount)
	if confidence < l.minconf {
		return nil
	}

	l.collection = append(l.collection, AssociationRule{
		LHS:        lhs,
		RHS:        rhs,
		Support:    fi.Support,
		Confidence: confidence,
	})

	return &ruleNode{rhsIDs: rhsIDs, rhs: rhs, parent: parent, confidence: confidence}
}

// mergeChildren joins pairs of same-parent, size-(k-1) RHS candidates
// sharing a (k-2)-prefix into size-k candidates, evaluates each as a rule,
// and installs passing candidates as children of the left sibling (a),
// mirroring the original lattice's ownership: a merged node extends the
// branch that contributed its prefix, not the shared grandparent.
func (l *Lattice) mergeChildren(fi itemset.FrequentItemset, level []*ruleNode, k int, n float64) []*ruleNode {
	var next []*ruleNode
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			a, b := level[i], level[j]
			if a.parent != b.parent {
				continue
			}
			if !samePrefix(a.rhsIDs, b.rhsIDs, k-2) {
				continue
			}
			if a.rhsIDs[k-2] >= b.rhsIDs[k-2] {
				continue
			}

			merged := make([]store.ItemID, k)
			copy(merged, a.rhsIDs)
			merged[k-1] = b.rhsIDs[k-2]

			ids := make([]uint32, k)
			for idx, id := range merged {
				ids[idx] = uint32(id)
			}
			rhs := roaring.BitmapOf(ids...)

			node := l.tryRule(fi, merged, rhs, a, n)
			if node != nil {
				next = append(next, node)
			}
		}
	}
	return next
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

// Collection returns every rule generated since the last Reset, in the
// order discovered (level by level, left to right within a level).
func (l *Lattice) Collection() []AssociationRule {
	return l.collection
}

// Reset discards the accumulated rule collection so the Lattice can be
// reused for an unrelated batch of itemsets.
func (l *Lattice) Reset() {
	l.collection = nil
}
