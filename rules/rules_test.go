package rules_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avldata/conslat/itemset"
	"github.com/avldata/conslat/rules"
	"github.com/avldata/conslat/store"
)

func TestNewLattice_InvalidThreshold(t *testing.T) {
	s, err := store.New([][]string{{"a", "b"}})
	require.NoError(t, err)

	for _, bad := range []float64{0, -1, 1.5} {
		_, err := rules.NewLattice(s, bad)
		assert.ErrorIs(t, err, rules.ErrInvalidThreshold)
	}
}

func TestGenerateFrom_SingletonItemsetYieldsNoRules(t *testing.T) {
	s, err := store.New([][]string{{"a"}})
	require.NoError(t, err)
	id, _ := s.ItemID("a")

	l, err := rules.NewLattice(s, 0.5)
	require.NoError(t, err)

	l.GenerateFrom(context.Background(), itemset.FrequentItemset{Items: roaring.BitmapOf(id), Support: 1})
	assert.Empty(t, l.Collection())
}

// TestGenerateFrom_TrivialScenario exercises spec.md §8.2's {1,2} itemset:
// transactions [{1,2},{1,2},{1,3}], support({1,2})=2/3. Rule {1}=>{2} has
// confidence support({1,2})/support({1}) = (2/3)/(3/3) = 2/3. Rule {2}=>{1}
// has confidence (2/3)/(2/3) = 1.0.
func TestGenerateFrom_TrivialScenario(t *testing.T) {
	s, err := store.New([][]string{
		{"1", "2"},
		{"1", "2"},
		{"1", "3"},
	})
	require.NoError(t, err)

	id1, _ := s.ItemID("1")
	id2, _ := s.ItemID("2")

	fi := itemset.FrequentItemset{Items: roaring.BitmapOf(id1, id2), Support: 2.0 / 3.0}

	l, err := rules.NewLattice(s, 0.6)
	require.NoError(t, err)
	l.GenerateFrom(context.Background(), fi)

	got := l.Collection()
	require.Len(t, got, 2)

	byRHS := map[uint32]rules.AssociationRule{}
	for _, r := range got {
		ids := r.RHS.ToArray()
		require.Len(t, ids, 1)
		byRHS[ids[0]] = r
	}

	r12 := byRHS[id2] // {1} => {2}
	assert.InDelta(t, 2.0/3.0, r12.Confidence, 1e-9)

	r21 := byRHS[id1] // {2} => {1}
	assert.InDelta(t, 1.0, r21.Confidence, 1e-9)
}

func TestGenerateFrom_PrunesLowConfidenceBranch(t *testing.T) {
	s, err := store.New([][]string{
		{"1", "2"},
		{"1", "2"},
		{"1", "3"},
	})
	require.NoError(t, err)
	id1, _ := s.ItemID("1")
	id2, _ := s.ItemID("2")

	fi := itemset.FrequentItemset{Items: roaring.BitmapOf(id1, id2), Support: 2.0 / 3.0}

	l, err := rules.NewLattice(s, 0.9)
	require.NoError(t, err)
	l.GenerateFrom(context.Background(), fi)

	got := l.Collection()
	require.Len(t, got, 1) // only {2} => {1} clears 0.9
	assert.Equal(t, []uint32{id1}, got[0].RHS.ToArray())
}

// TestGenerateFrom_ThreeItemMergesSiblings exercises mergeChildren, the
// level-2 sibling-merge path that a 2-item itemset never reaches (its
// level-1 RHS candidates are already of size len(ids)-1, so the lattice
// loop never runs a k=2 merge). Five transactions over items 1,2,3:
//
//	{1,2,3} x3, {1,2} x1, {1,3} x1
//
// support({1,2,3}) = 3/5 = 0.6. At minconf=0.7:
//
//	level 1 (RHS size 1): {2,3}=>{1} conf=0.6*5/3=1.00 (survives)
//	                       {1,3}=>{2} conf=0.6*5/4=0.75 (survives)
//	                       {1,2}=>{3} conf=0.6*5/4=0.75 (survives)
//	level 2 (RHS size 2, via mergeChildren): {3}=>{1,2} conf=0.75 (survives)
//	                       {2}=>{1,3} conf=0.75 (survives)
//	                       {1}=>{2,3} conf=0.6*5/5=0.60 (pruned)
func TestGenerateFrom_ThreeItemMergesSiblings(t *testing.T) {
	s, err := store.New([][]string{
		{"1", "2", "3"},
		{"1", "2", "3"},
		{"1", "2", "3"},
		{"1", "2"},
		{"1", "3"},
	})
	require.NoError(t, err)
	id1, _ := s.ItemID("1")
	id2, _ := s.ItemID("2")
	id3, _ := s.ItemID("3")

	fi := itemset.FrequentItemset{Items: roaring.BitmapOf(id1, id2, id3), Support: 0.6}

	l, err := rules.NewLattice(s, 0.7)
	require.NoError(t, err)
	require.NoError(t, l.GenerateFrom(context.Background(), fi))

	got := l.Collection()
	require.Len(t, got, 5, "3 level-1 rules + 2 surviving level-2 merges, {1}=>{2,3} pruned below 0.7")

	byRHS := map[string]rules.AssociationRule{}
	for _, r := range got {
		ids := r.RHS.ToArray()
		key := fmt.Sprint(ids)
		byRHS[key] = r
	}

	r1 := byRHS[fmt.Sprint([]uint32{id1})] // {2,3} => {1}
	assert.InDelta(t, 1.0, r1.Confidence, 1e-9)
	assert.ElementsMatch(t, []uint32{id2, id3}, r1.LHS.ToArray())

	r2 := byRHS[fmt.Sprint([]uint32{id2})]
	assert.InDelta(t, 0.75, r2.Confidence, 1e-9)
	assert.ElementsMatch(t, []uint32{id1, id3}, r2.LHS.ToArray())

	r3 := byRHS[fmt.Sprint([]uint32{id3})]
	assert.InDelta(t, 0.75, r3.Confidence, 1e-9)
	assert.ElementsMatch(t, []uint32{id1, id2}, r3.LHS.ToArray())

	r12 := byRHS[fmt.Sprint([]uint32{id1, id2})]
	assert.InDelta(t, 0.75, r12.Confidence, 1e-9)
	assert.ElementsMatch(t, []uint32{id3}, r12.LHS.ToArray())

	r13 := byRHS[fmt.Sprint([]uint32{id1, id3})]
	assert.InDelta(t, 0.75, r13.Confidence, 1e-9)
	assert.ElementsMatch(t, []uint32{id2}, r13.LHS.ToArray())

	_, prunedExists := byRHS[fmt.Sprint([]uint32{id2, id3})]
	assert.False(t, prunedExists, "{1} => {2,3} has confidence 0.60, below the 0.7 threshold")
}

func TestLattice_ResetClearsCollection(t *testing.T) {
	s, err := store.New([][]string{{"1", "2"}, {"1", "2"}})
	require.NoError(t, err)
	id1, _ := s.ItemID("1")
	id2, _ := s.ItemID("2")

	l, err := rules.NewLattice(s, 0.1)
	require.NoError(t, err)
	l.GenerateFrom(context.Background(), itemset.FrequentItemset{Items: roaring.BitmapOf(id1, id2), Support: 1})
	require.NotEmpty(t, l.Collection())

	l.Reset()
	assert.Empty(t, l.Collection())
}
