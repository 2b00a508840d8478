package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/kangezhang/learngraphics/internal/process"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing, with debug
// logging captured in the returned buffer.
func SetupAppTest(t *testing.T, config *Config, modules ...process.Module) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	config.LogLevel = "debug"
	testApp := NewApp(logBuffer, config, modules...)

	t.Cleanup(func() {
		if os.Getenv("LESSONPLAY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
