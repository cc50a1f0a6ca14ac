package loader_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomengine/pkg/application/services/loader"
	"github.com/vsinha/bomengine/pkg/domain/entities"
	testhelpers "github.com/vsinha/bomengine/pkg/infrastructure/testing"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	repo, _, root := testhelpers.BuildBakeryTestData()
	l := loader.New(repo)

	bom, err := l.Load(context.Background(), root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, bom.ID)
	assert.Len(t, bom.Items, 5)

	_, err = l.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrBOMNotFound)
}

func TestLoadActiveForProduct(t *testing.T) {
	t.Parallel()

	repo, _, _ := testhelpers.BuildBakeryTestData()
	l := loader.New(repo)

	bom, err := l.LoadActiveForProduct(context.Background(), "DOUGH")
	require.NoError(t, err)
	assert.Equal(t, entities.ComponentID("DOUGH"), bom.ProductID)

	_, err = l.LoadActiveForProduct(context.Background(), "SALT")
	assert.ErrorIs(t, err, entities.ErrNoActiveBOM)
}

func TestSessionMemoizes(t *testing.T) {
	t.Parallel()

	repo, _, _ := testhelpers.BuildBakeryTestData()
	s := loader.New(repo).Session()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		bom, found, err := s.ActiveBOM(ctx, "DOUGH")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, entities.ComponentID("DOUGH"), bom.ProductID)

		_, found, err = s.ActiveBOM(ctx, "FLOUR")
		require.NoError(t, err)
		assert.False(t, found)
	}

	assert.Equal(t, 2, s.Loads())
}

func TestLoadCancelledContext(t *testing.T) {
	t.Parallel()

	repo, _, root := testhelpers.BuildBakeryTestData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.New(repo).Load(ctx, root.ID)
	assert.ErrorIs(t, err, context.Canceled)
}
