package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadAbsentNamespace(t *testing.T) {
	s := NewStore()

	payload, err := s.Load(context.Background(), "templates")

	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestStore_SaveThenLoad(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "templates", `{"a":1}`))

	payload, err := s.Load(ctx, "templates")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, payload)
}

func TestStore_NamespacesAreIndependent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "templates", "t"))
	require.NoError(t, s.Save(ctx, "history", "h"))

	payload, err := s.Load(ctx, "templates")
	require.NoError(t, err)
	assert.Equal(t, "t", payload)
}

func TestStore_Lifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	assert.NoError(t, s.HealthCheck(ctx))
	assert.NoError(t, s.Close(ctx))
}
