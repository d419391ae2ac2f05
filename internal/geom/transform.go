package geom

// Rotate applies m to p (integer matrix-vector product).
func Rotate(m Matrix, p Point) Point {
	return m.Apply(p)
}

// RotateAll rotates every point of ps by m into a new slice.
func RotateAll(m Matrix, ps []Point) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i] = m.Apply(p)
	}
	return out
}

// Translate returns p shifted by offset.
func Translate(p, offset Point) Point {
	return p.Add(offset)
}

// TranslateAll shifts every point of ps by offset into a new slice.
func TranslateAll(ps []Point, offset Point) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i] = p.Add(offset)
	}
	return out
}

// Manhattan returns the Manhattan distance between a and b.
func Manhattan(a, b Point) int {
	return a.Manhattan(b)
}
