package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// An HCL syntax error is guaranteed to panic inside app.NewApp().
	invalidHCL := `
		lesson "broken" {
			timeline {
		// Missing closing braces here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "lesson.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	out := &bytes.Buffer{}
	runErr := run(out, []string{filePath})

	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to parse"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_PlaysLessonHeadlessly(t *testing.T) {
	t.Parallel()

	lessonHCL := `
lesson "tiny" {
  timeline {
    duration = 1

    track "event" "cues" {
      keyframe {
        time   = 0.5
        action = "ping"
      }
    }
  }
}
`
	filePath := filepath.Join(t.TempDir(), "lesson.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(lessonHCL), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{"-max-speed", "-log-level", "error", filePath})
	require.NoError(t, err)
	require.Contains(t, out.String(), `lesson "tiny" played to t=1.00s`)
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"--this-is-not-a-valid-flag"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
