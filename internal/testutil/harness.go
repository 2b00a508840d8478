// Package testutil provides a standardized harness for lesson-level tests:
// write an inline HCL lesson, build the application around it, and play it
// headlessly on the virtual clock.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kangezhang/learngraphics/internal/app"
)

// HarnessResult holds the outcomes of a lesson playback test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// PlayLessonTest writes content into a temporary lesson file, builds the app
// with the given config mutations and plays it to completion on the virtual
// clock. Startup panics are recovered into Err so validation failures can be
// asserted like ordinary errors.
func PlayLessonTest(t *testing.T, content string, mutate ...func(*app.Config)) *HarnessResult {
	t.Helper()

	lessonPath := filepath.Join(t.TempDir(), "lesson.hcl")
	require.NoError(t, os.WriteFile(lessonPath, []byte(content), 0o644))

	cfg, err := app.NewConfig(app.Config{
		LessonPath: lessonPath,
		MaxSpeed:   true,
		LogLevel:   "debug",
		LogFormat:  "text",
	})
	require.NoError(t, err)
	for _, m := range mutate {
		m(cfg)
	}

	logBuffer := &app.SafeBuffer{}
	var testApp *app.App
	var panicErr any
	func() {
		defer func() { panicErr = recover() }()
		testApp = app.NewApp(logBuffer, cfg)
	}()
	if panicErr != nil {
		if os.Getenv("LESSONPLAY_TEST_LOGS") == "true" {
			t.Logf("--- HARNESS RECOVERED PANIC ---\n%v", panicErr)
		}
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	runErr := testApp.Run(ctx)

	t.Cleanup(func() {
		if os.Getenv("LESSONPLAY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
