package merge

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/growthrings/internal/rings/chain"
)

// IntersectionMatrix marks which chains share at least one ray and so can
// never be merged directly. It is indexed by dense chain id, symmetric by
// construction, and has ones on the diagonal.
type IntersectionMatrix struct {
	n int
	m *mat.SymDense // nil when n == 0
}

// NewIntersectionMatrix returns an n×n identity matrix.
func NewIntersectionMatrix(n int) *IntersectionMatrix {
	im := &IntersectionMatrix{n: n}
	if n > 0 {
		im.m = mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			im.m.SetSym(i, i, 1)
		}
	}
	return im
}

// ComputeIntersectionMatrix builds the matrix for chains whose ids must be
// exactly 0..len(chains)-1.
func ComputeIntersectionMatrix(chains []*chain.Chain, nr int) (*IntersectionMatrix, error) {
	im := NewIntersectionMatrix(len(chains))
	for _, c := range chains {
		if c.ID < 0 || c.ID >= im.n {
			return nil, fmt.Errorf("%w: chain %d, matrix size %d", ErrMatrixIndex, c.ID, im.n)
		}
	}
	ids := make([]int, 0, len(chains))
	for ray := 0; ray < nr; ray++ {
		ids = ids[:0]
		for _, c := range chains {
			if c.HasRay(ray) {
				ids = append(ids, c.ID)
			}
		}
		for a := 0; a < len(ids); a++ {
			for b := a + 1; b < len(ids); b++ {
				im.m.SetSym(ids[a], ids[b], 1)
			}
		}
	}
	return im, nil
}

// Size is the matrix dimension.
func (im *IntersectionMatrix) Size() int {
	return im.n
}

func (im *IntersectionMatrix) check(ids ...int) error {
	for _, id := range ids {
		if id < 0 || id >= im.n {
			return fmt.Errorf("%w: chain %d, matrix size %d", ErrMatrixIndex, id, im.n)
		}
	}
	return nil
}

// Intersects reports M[i][j] == 1. Ids outside the matrix never intersect.
func (im *IntersectionMatrix) Intersects(i, j int) bool {
	if im.check(i, j) != nil {
		return false
	}
	return im.m.At(i, j) != 0
}

// Row lists the ids intersecting id, including id itself.
func (im *IntersectionMatrix) Row(id int) ([]int, error) {
	if err := im.check(id); err != nil {
		return nil, err
	}
	var out []int
	for j := 0; j < im.n; j++ {
		if im.m.At(id, j) != 0 {
			out = append(out, j)
		}
	}
	return out, nil
}

// Mark records that chains i and j share a ray.
func (im *IntersectionMatrix) Mark(i, j int) error {
	if err := im.check(i, j); err != nil {
		return err
	}
	im.m.SetSym(i, j, 1)
	return nil
}

// Or folds row and column src into dst.
func (im *IntersectionMatrix) Or(dst, src int) error {
	if err := im.check(dst, src); err != nil {
		return err
	}
	for j := 0; j < im.n; j++ {
		if im.m.At(src, j) != 0 {
			im.m.SetSym(dst, j, 1)
		}
	}
	return nil
}

// Delete removes row and column k. Every id above k moves down by one.
func (im *IntersectionMatrix) Delete(k int) error {
	if err := im.check(k); err != nil {
		return err
	}
	n := im.n - 1
	if n == 0 {
		im.n, im.m = 0, nil
		return nil
	}
	next := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		si := skip(i, k)
		for j := i; j < n; j++ {
			next.SetSym(i, j, im.m.At(si, skip(j, k)))
		}
	}
	im.n, im.m = n, next
	return nil
}

func skip(i, k int) int {
	if i >= k {
		return i + 1
	}
	return i
}

// Validate checks dimension, a unit diagonal and 0/1 entries.
func (im *IntersectionMatrix) Validate(want int) error {
	if im.n != want {
		return fmt.Errorf("%w: matrix size %d, %d live chains", ErrInvariant, im.n, want)
	}
	for i := 0; i < im.n; i++ {
		if im.m.At(i, i) != 1 {
			return fmt.Errorf("%w: M[%d][%d] = %v", ErrInvariant, i, i, im.m.At(i, i))
		}
		for j := 0; j < im.n; j++ {
			a, b := im.m.At(i, j), im.m.At(j, i)
			if a != b || (a != 0 && a != 1) {
				return fmt.Errorf("%w: M[%d][%d]=%v M[%d][%d]=%v", ErrInvariant, i, j, a, j, i, b)
			}
		}
	}
	return nil
}
