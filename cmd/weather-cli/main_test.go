package main

import "testing"

// TestCoverageGaps_IntentionallyUntested documents why cmd/weather-cli has no
// unit tests. Run with -v to see skip reason.
func TestCoverageGaps_IntentionallyUntested(t *testing.T) {
	t.Skip("main.go is wiring-only; command behavior is covered by internal/cli tests")
}
