package geom

import (
	"fmt"
	"strings"
)

// Matrix is a row-major 3x3 integer matrix. Rotation matrices in this package
// only hold entries from {-1, 0, 1}.
type Matrix [3][3]int

// Identity is the 3x3 identity matrix.
var Identity = Matrix{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// Apply returns m·p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z,
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z,
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z,
	}
}

// Mul returns the matrix product m·n.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return out
}

// Transpose returns mᵀ, which is the inverse of any rotation matrix.
func (m Matrix) Transpose() Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[j][i] = m[i][j]
		}
	}
	return out
}

// Det returns the determinant of m.
func (m Matrix) Det() int {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// IsIdentity reports whether m is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity
}

// Float64s returns the entries of m in row-major order, the layout
// gonum's mat.NewDense expects.
func (m Matrix) Float64s() []float64 {
	out := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out = append(out, float64(m[i][j]))
		}
	}
	return out
}

// String renders m on one line, e.g. "[1 0 0; 0 0 -1; 0 1 0]".
func (m Matrix) String() string {
	rows := make([]string, 3)
	for i := 0; i < 3; i++ {
		rows[i] = fmt.Sprintf("%d %d %d", m[i][0], m[i][1], m[i][2])
	}
	return "[" + strings.Join(rows, "; ") + "]"
}

// quarterCos and quarterSin give cos/sin of steps*90°.
func quarterCos(steps int) int {
	switch steps & 3 {
	case 0:
		return 1
	case 2:
		return -1
	default:
		return 0
	}
}

func quarterSin(steps int) int {
	switch steps & 3 {
	case 1:
		return 1
	case 3:
		return -1
	default:
		return 0
	}
}

// RotX returns the rotation of steps quarter turns about the X axis.
func RotX(steps int) Matrix {
	c, s := quarterCos(steps), quarterSin(steps)
	return Matrix{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}
}

// RotY returns the rotation of steps quarter turns about the Y axis.
func RotY(steps int) Matrix {
	c, s := quarterCos(steps), quarterSin(steps)
	return Matrix{
		{c, 0, s},
		{0, 1, 0},
		{-s, 0, c},
	}
}

// RotZ returns the rotation of steps quarter turns about the Z axis.
func RotZ(steps int) Matrix {
	c, s := quarterCos(steps), quarterSin(steps)
	return Matrix{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}
