// Package testutil holds the worked example shared by the package tests.
// It imports nothing from the domain packages so any of them can use it.
package testutil

import _ "embed"

// exampleScan is the five-scanner worked example: every scanner overlaps
// another by at least 12 beacons under some rotation.
//
//go:embed testdata/example.txt
var exampleScan string

// Expected results for ExampleScan at the default minimum overlap.
const (
	ExampleScannerCount = 5
	ExampleUniqueBeacon = 79
	ExampleMaxDistance  = 3621
)

// ExamplePositions holds the global position of each example scanner, by id,
// as {x, y, z}.
var ExamplePositions = [ExampleScannerCount][3]int{
	{0, 0, 0},
	{68, -1246, -43},
	{1105, -1205, 1229},
	{-92, -2380, -20},
	{-20, -1133, 1061},
}

// ExampleBeaconCounts holds the number of beacons each example scanner reports.
var ExampleBeaconCounts = [ExampleScannerCount]int{25, 25, 26, 25, 26}

// ExampleScan returns the worked example in scan file format.
func ExampleScan() string {
	return exampleScan
}
