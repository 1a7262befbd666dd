package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertGridScanned checks the log output within a HarnessResult to confirm
// that a grid was walked over the given range.
func AssertGridScanned(t *testing.T, result *HarnessResult, gridName, rng string) {
	t.Helper()

	want := fmt.Sprintf("grid=%s range=%q", gridName, rng)
	require.True(t,
		strings.Contains(result.LogOutput, want),
		"expected scan of grid %q over %s was not found in logs", gridName, rng,
	)
}
