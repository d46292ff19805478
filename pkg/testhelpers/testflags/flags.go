package testflags

import (
	"flag"
	"testing"
)

// Test enablement flags
// Unit tests run by default. Property tests with large sample counts only run
// when `-property` is given.
var unitTest = flag.Bool("unit", true, "Run the unit go tests")
var propertyTest = flag.Bool("property", false, "Run the long property based go tests")

// UnitTest will run the test its called from iff the `-unit` or `-short` flag
// is passed when calling `go test`. Otherwise the test will be skipped. UnitTest
// will run the test its called from in parallel.
func UnitTest(t *testing.T) {
	if !*unitTest && !testing.Short() {
		t.SkipNow()
	}
	t.Parallel()
}

// PropertySamples returns how many random cases a property test should try:
// a small smoke count by default and a large one under `-property`.
func PropertySamples() int {
	if *propertyTest && !testing.Short() {
		return 20000
	}
	return 500
}

// BadUnitTestWithSideEffects will run the test its called from iff the
// `-unit` or `-short` flag is passed when calling `go test`. Otherwise the test
// will be skipped. BadUnitTestWithSideEffects will run the test its called
// serially. Tests that use this flag are bad an should feel bad.
func BadUnitTestWithSideEffects(t *testing.T) {
	if !*unitTest && !testing.Short() {
		t.SkipNow()
	}
}
