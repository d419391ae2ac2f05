// Package registration aligns independent beacon scanners into one global
// frame.
//
// Responsibilities: the overlap matcher (difference-vector vote), the
// alignment engine (retry sweeps over pending scanners with global
// no-progress failure) and the beacon aggregator (unique global beacons,
// maximum scanner distance).
// Key types: Scanner, AlignedScanner, Matcher, Engine, Result, Summary.
//
// Dependency rule: registration depends on geom, monitoring and timeutil
// only. File parsing, persistence and reporting live in their own packages.
package registration
