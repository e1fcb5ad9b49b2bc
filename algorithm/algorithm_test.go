package algorithm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avldata/conslat/algorithm"
)

func TestLifecycle_HappyPath(t *testing.T) {
	var b algorithm.Base
	b.RegisterOptions([]algorithm.OptionSpec{
		{Key: "table", Phase: algorithm.LoadTime, Required: true},
		{Key: "minsup", Phase: algorithm.ExecuteTime, Required: true},
	})
	assert.Equal(t, algorithm.StateOptionsRegistered, b.State())

	require.NoError(t, b.SetOption("table", "rows"))
	require.NoError(t, b.RequireLoaded())
	assert.Equal(t, algorithm.StateLoaded, b.State())

	require.NoError(t, b.SetOption("minsup", 0.5))
	require.NoError(t, b.RequireExecuted())
	assert.Equal(t, algorithm.StateExecuted, b.State())

	require.NoError(t, b.Reset())
	assert.Equal(t, algorithm.StateLoaded, b.State())
}

func TestLifecycle_MissingRequiredOption(t *testing.T) {
	var b algorithm.Base
	b.RegisterOptions([]algorithm.OptionSpec{
		{Key: "table", Phase: algorithm.LoadTime, Required: true},
	})

	err := b.RequireLoaded()
	assert.ErrorIs(t, err, algorithm.ErrMissingOption)
}

func TestLifecycle_OutOfOrder(t *testing.T) {
	var b algorithm.Base
	b.RegisterOptions(nil)

	err := b.RequireExecuted()
	assert.ErrorIs(t, err, algorithm.ErrOutOfOrder)
}

func TestSetOption_UnknownKey(t *testing.T) {
	var b algorithm.Base
	b.RegisterOptions(nil)

	err := b.SetOption("nope", 1)
	assert.ErrorIs(t, err, algorithm.ErrUnknownOption)
}
