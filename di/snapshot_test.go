package di_test

import (
	"errors"
	"testing"

	"github.com/sghaida/microkernel/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RequiresCompile(t *testing.T) {
	t.Parallel()

	_, err := wiredContainer().Snapshot()
	assert.ErrorIs(t, err, di.ErrNotCompiled)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	c := wiredContainer()
	require.NoError(t, c.Compile())

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "postgres://shop", snap.Parameters["db.dsn"])

	restored, err := di.FromSnapshot(snap, fixtureFactories())
	require.NoError(t, err)
	require.True(t, restored.IsCompiled())
	assert.Equal(t, c.Parameters(), restored.Parameters())
	assert.Equal(t, c.ServiceIDs(), restored.ServiceIDs())

	u, err := di.TryGetAs[*UserService](restored, "user")
	require.NoError(t, err)
	assert.Equal(t, "postgres://shop", u.DB.DSN)
	assert.Same(t, u.DB, u.Basket.DB)
}

func TestFromSnapshot_DanglingReference(t *testing.T) {
	t.Parallel()

	snap := di.Snapshot{
		Parameters: map[string]any{},
		Definitions: map[string]di.Definition{
			"a": {Factory: "x", Arguments: []any{di.Reference{ID: "ghost"}}, Shared: true},
		},
	}

	_, err := di.FromSnapshot(snap, nil)
	var missing di.MissingServiceError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ghost", missing.ID)
}
