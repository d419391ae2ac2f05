package geom

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RotationCount is the number of proper rotations of an axis-aligned cube.
const RotationCount = 24

// ErrMalformedGroup is returned by Validate when a rotation set breaks one of
// the group invariants.
var ErrMalformedGroup = errors.New("malformed rotation group")

// rankTolerance is the relative singular value cutoff for spanRank.
const rankTolerance = 1e-9

// fullSpan is the dimension of the space of 3×3 matrices.
const fullSpan = 9

// RotationGroup is the ordered set of distinct axis-aligned rotations.
// The order is deterministic and the identity is always first.
type RotationGroup []Matrix

// AllRotations composes Rx^a·Ry^b·Rz^c for every (a, b, c) in {0,1,2,3}³ and
// keeps the distinct products in first-seen order. The 64 products collapse
// to 24 matrices.
func AllRotations() RotationGroup {
	seen := make(map[Matrix]struct{}, RotationCount)
	group := make(RotationGroup, 0, RotationCount)
	for a := 0; a < 4; a++ {
		rx := Identity.Mul(RotX(a))
		for b := 0; b < 4; b++ {
			rxy := rx.Mul(RotY(b))
			for c := 0; c < 4; c++ {
				r := rxy.Mul(RotZ(c))
				if _, dup := seen[r]; dup {
					continue
				}
				seen[r] = struct{}{}
				group = append(group, r)
			}
		}
	}
	return group
}

// NewRotationGroup builds the rotation group and validates it.
func NewRotationGroup() (RotationGroup, error) {
	g := AllRotations()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// MustRotationGroup is like NewRotationGroup but panics on a malformed group.
// A failure here is a programming error, not an input problem.
func MustRotationGroup() RotationGroup {
	g, err := NewRotationGroup()
	if err != nil {
		panic(err)
	}
	return g
}

// Validate checks cardinality, distinctness, orthogonality, det = +1,
// closure under composition and that the members span every 3×3 matrix.
func (g RotationGroup) Validate() error {
	if len(g) != RotationCount {
		return fmt.Errorf("%w: %d members, want %d", ErrMalformedGroup, len(g), RotationCount)
	}
	if !g[0].IsIdentity() {
		return fmt.Errorf("%w: first member %s is not the identity", ErrMalformedGroup, g[0])
	}

	for i, r := range g {
		if j := g.Index(r); j != i {
			return fmt.Errorf("%w: member %d duplicates member %d", ErrMalformedGroup, i, j)
		}
		if det := r.Det(); det != 1 {
			return fmt.Errorf("%w: member %d %s has det %d", ErrMalformedGroup, i, r, det)
		}
		if !r.Mul(r.Transpose()).IsIdentity() {
			return fmt.Errorf("%w: member %d %s is not orthogonal", ErrMalformedGroup, i, r)
		}
	}

	for _, a := range g {
		for _, b := range g {
			if !g.Contains(a.Mul(b)) {
				return fmt.Errorf("%w: %s·%s not in group", ErrMalformedGroup, a, b)
			}
		}
	}

	if rank := g.spanRank(); rank != fullSpan {
		return fmt.Errorf("%w: members span %d of %d matrix dimensions", ErrMalformedGroup, rank, fullSpan)
	}
	return nil
}

// spanRank is the dimension of the linear span of g's members, each taken
// as a vector of its nine entries. The cube group acts irreducibly on R³,
// so its members span all 3×3 matrices; a set of rotations about a single
// axis spans only 3 dimensions.
func (g RotationGroup) spanRank() int {
	if len(g) == 0 {
		return 0
	}
	a := mat.NewDense(len(g), fullSpan, nil)
	for i, r := range g {
		a.SetRow(i, r.Float64s())
	}
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0
	}
	return svd.Rank(rankTolerance)
}

// Index returns the position of m in g, or -1.
func (g RotationGroup) Index(m Matrix) int {
	for i, r := range g {
		if r == m {
			return i
		}
	}
	return -1
}

// Contains reports whether m is a member of g.
func (g RotationGroup) Contains(m Matrix) bool {
	return g.Index(m) >= 0
}
