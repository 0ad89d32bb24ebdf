package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/testutil"
)

func TestNewIntersectionMatrix(t *testing.T) {
	im := NewIntersectionMatrix(3)
	assert.Equal(t, 3, im.Size())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, i == j, im.Intersects(i, j), "M[%d][%d]", i, j)
		}
	}
	require.NoError(t, im.Validate(3))

	empty := NewIntersectionMatrix(0)
	assert.Equal(t, 0, empty.Size())
	assert.False(t, empty.Intersects(0, 0))
	require.NoError(t, empty.Validate(0))
}

func TestComputeIntersectionMatrix(t *testing.T) {
	chains := []*chain.Chain{
		testutil.Arc(t, 0, 360, 0, 100, 150),
		testutil.Arc(t, 1, 360, 90, 200, 160),
		testutil.Arc(t, 2, 360, 210, 300, 150),
		testutil.Ring(t, 3, 360, 100),
	}
	im, err := ComputeIntersectionMatrix(chains, 360)
	require.NoError(t, err)

	assert.True(t, im.Intersects(0, 1))
	assert.True(t, im.Intersects(1, 0))
	assert.False(t, im.Intersects(0, 2))
	assert.False(t, im.Intersects(1, 2))
	for i := 0; i < 3; i++ {
		assert.True(t, im.Intersects(i, 3), "ring intersects %d", i)
	}
	row, err := im.Row(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, row)
	require.NoError(t, im.Validate(4))
}

func TestComputeIntersectionMatrix_SparseIDs(t *testing.T) {
	chains := []*chain.Chain{testutil.Arc(t, 4, 360, 0, 10, 150)}
	_, err := ComputeIntersectionMatrix(chains, 360)
	assert.ErrorIs(t, err, ErrMatrixIndex)
}

func TestIntersectionMatrix_OrAndDelete(t *testing.T) {
	im := NewIntersectionMatrix(4)
	require.NoError(t, im.Mark(1, 3))
	require.NoError(t, im.Mark(0, 2))

	// Fold 2 into 1, then remove 2.
	require.NoError(t, im.Or(1, 2))
	assert.True(t, im.Intersects(1, 0))
	assert.True(t, im.Intersects(0, 1))
	require.NoError(t, im.Delete(2))

	assert.Equal(t, 3, im.Size())
	assert.True(t, im.Intersects(0, 1))
	// old id 3 is now 2
	assert.True(t, im.Intersects(1, 2))
	assert.False(t, im.Intersects(0, 2))
	require.NoError(t, im.Validate(3))

	require.NoError(t, im.Delete(0))
	require.NoError(t, im.Delete(0))
	require.NoError(t, im.Delete(0))
	assert.Equal(t, 0, im.Size())
}

func TestIntersectionMatrix_Bounds(t *testing.T) {
	im := NewIntersectionMatrix(2)
	assert.ErrorIs(t, im.Mark(0, 2), ErrMatrixIndex)
	assert.ErrorIs(t, im.Or(-1, 0), ErrMatrixIndex)
	assert.ErrorIs(t, im.Delete(5), ErrMatrixIndex)
	_, err := im.Row(2)
	assert.ErrorIs(t, err, ErrMatrixIndex)
	assert.False(t, im.Intersects(0, 9))
	assert.ErrorIs(t, im.Validate(3), ErrInvariant)
}
