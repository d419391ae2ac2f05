package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/scanalign/internal/geom"
)

// scatter returns n distinct points with no repeated difference vectors.
func scatter(n int) []geom.Point {
	out := make([]geom.Point, n)
	for i := range out {
		out[i] = geom.Point{X: (i*i*37)%1009 - 500, Y: (i*i*i*11)%997 - 498, Z: (i*7919)%1013 - 506}
	}
	return out
}

func TestMatcher_Shift(t *testing.T) {
	t.Parallel()

	ref := scatter(27)
	v := geom.Point{X: 1, Y: 2, Z: 3}
	cand := geom.TranslateAll(ref, v.Neg())

	m := Matcher{MinOverlap: 12}
	got, votes, ok := m.Match(ref, cand)
	assert.True(t, ok)
	assert.Equal(t, v, got)
	assert.Equal(t, len(ref), votes)
}

func TestMatcher_BelowThreshold(t *testing.T) {
	t.Parallel()

	ref := scatter(27)
	v := geom.Point{X: -50, Y: 7, Z: 900}
	shared := ref[:11]
	cand := geom.TranslateAll(shared, v.Neg())
	// Points far away from anything in ref, so they cannot vote for v.
	for i := 0; i < 20; i++ {
		cand = append(cand, geom.Point{X: 100000 + i*3, Y: -100000 - i*7, Z: i * 11})
	}

	m := Matcher{MinOverlap: 12}
	_, votes, ok := m.Match(ref, cand)
	assert.False(t, ok)
	assert.Equal(t, 11, votes)

	m.MinOverlap = 11
	got, _, ok := m.Match(ref, cand)
	assert.True(t, ok)
	assert.Equal(t, v, got)
}

func TestMatcher_TieBreak(t *testing.T) {
	t.Parallel()

	// Every pair votes once, so every translation ties at 1.
	ref := []geom.Point{{X: 0}, {X: 10}}
	cand := []geom.Point{{Y: 0}, {Y: 5}}

	m := Matcher{MinOverlap: 1}
	for i := 0; i < 20; i++ {
		got, votes, ok := m.Match(ref, cand)
		assert.True(t, ok)
		assert.Equal(t, 1, votes)
		assert.Equal(t, geom.Point{X: 0, Y: -5, Z: 0}, got, "smallest (x,y,z) wins ties")
	}
}

func TestMatcher_Empty(t *testing.T) {
	t.Parallel()

	m := Matcher{MinOverlap: 1}
	_, _, ok := m.Match(nil, scatter(8))
	assert.False(t, ok)
	_, _, ok = m.Match(scatter(8), nil)
	assert.False(t, ok)
}
