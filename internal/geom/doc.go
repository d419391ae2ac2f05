// Package geom owns the integer geometry used by scanner registration.
//
// Responsibilities: the Point value type, 3x3 integer rotation matrices,
// the 24-member group of axis-aligned proper rotations, and the pure
// transform helpers (rotate, translate, Manhattan distance).
// Key types: Point, Matrix, RotationGroup.
//
// Dependency rule: geom depends on nothing else in this module.
package geom
