package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTrace writes body to a trace file in a temp dir and returns its path.
func writeTrace(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rep")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String(), fnErr
}

// withReplayFlags sets the replay flag globals for one test and restores them after.
func withReplayFlags(t *testing.T, allocator string, check, showMap, asJSON bool) {
	t.Helper()
	saved := []any{replayAllocator, replayCheck, replayMap, jsonOut, noColor, replayChunk, replayMaxHeap, replayMapWidth}
	t.Cleanup(func() {
		replayAllocator = saved[0].(string)
		replayCheck = saved[1].(bool)
		replayMap = saved[2].(bool)
		jsonOut = saved[3].(bool)
		noColor = saved[4].(bool)
		replayChunk = saved[5].(int)
		replayMaxHeap = saved[6].(int)
		replayMapWidth = saved[7].(int)
	})

	replayAllocator = allocator
	replayCheck = check
	replayMap = showMap
	jsonOut = asJSON
	noColor = true
	replayChunk = 256
	replayMaxHeap = 1 << 20
	replayMapWidth = 64
}
