package display

import (
	"os"
	"testing"
)

// unsetenv removes key for the duration of the test, restoring any previous
// value afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		}
	})
}
