package arules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avldata/conslat/arules"
	"github.com/avldata/conslat/store"
)

// TestMiner_TrivialScenario exercises spec.md §8.2 end to end: exactly
// one rule, {2} => {1}, survives minconf=0.9.
func TestMiner_TrivialScenario(t *testing.T) {
	m := arules.NewMiner()
	require.NoError(t, m.LoadData([][]string{
		{"1", "2"},
		{"1", "2"},
		{"1", "3"},
	}))

	require.NoError(t, m.Execute(context.Background(), 0.5, 0.9))

	got := m.Rules()
	require.Len(t, got, 1)
	rhs := got[0].RHS.ToArray()
	require.Len(t, rhs, 1)
	assert.Equal(t, "1", m.Label(rhs[0]))
	lhs := got[0].LHS.ToArray()
	require.Len(t, lhs, 1)
	assert.Equal(t, "2", m.Label(lhs[0]))

	assert.Contains(t, m.Render(got[0]), "=>")
}

func TestMiner_EmptyInput(t *testing.T) {
	m := arules.NewMiner()
	err := m.LoadData(nil)
	assert.ErrorIs(t, err, store.ErrEmptyInput)
}

func TestMiner_ResetAllowsRerun(t *testing.T) {
	m := arules.NewMiner()
	require.NoError(t, m.LoadData([][]string{{"1", "2"}, {"1", "2"}}))
	require.NoError(t, m.Execute(context.Background(), 0.5, 0.5))
	require.NotEmpty(t, m.Rules())

	require.NoError(t, m.Reset())
	assert.Empty(t, m.Rules())

	require.NoError(t, m.Execute(context.Background(), 1.0, 1.0))
	assert.NotEmpty(t, m.Rules())
}

func TestMiner_ExecuteBeforeLoadData(t *testing.T) {
	m := arules.NewMiner()
	err := m.Execute(context.Background(), 0.5, 0.5)
	assert.Error(t, err)
}

// TestMiner_ExecuteFailureRollsBackToLoaded checks that a failed Execute
// (here, an out-of-range minsup) does not strand the instance in the
// Executed state: a subsequent valid Execute call must succeed rather
// than fail with algorithm.ErrOutOfOrder.
func TestMiner_ExecuteFailureRollsBackToLoaded(t *testing.T) {
	m := arules.NewMiner()
	require.NoError(t, m.LoadData([][]string{{"1", "2"}, {"1", "2"}}))

	err := m.Execute(context.Background(), 0, 0.5)
	require.Error(t, err)

	require.NoError(t, m.Execute(context.Background(), 0.5, 0.5))
	assert.NotEmpty(t, m.Rules())
}
