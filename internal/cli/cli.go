package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kangezhang/learngraphics/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("lessonplay", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
lessonplay - plays declarative interactive lessons headlessly.

Usage:
  lessonplay [options] [LESSON_PATH]

Arguments:
  LESSON_PATH
    Path to a single .hcl lesson file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	lessonFlag := flagSet.String("lesson", "", "Path to the lesson file or directory.")
	lFlag := flagSet.String("l", "", "Path to the lesson file or directory (shorthand).")
	speedFlag := flagSet.Float64("speed", 0, "Playback speed multiplier. 0 keeps the lesson's value.")
	loopFlag := flagSet.Bool("loop", false, "Loop playback (runs until interrupted).")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP status server. 0 is disabled.")
	renderURLFlag := flagSet.String("render-url", "", "socket.io URL of an external renderer to stream playback to.")
	snapshotOutFlag := flagSet.String("snapshot-out", "", "Write the final timeline snapshot to this file.")
	snapshotFormatFlag := flagSet.String("snapshot-format", "", "Snapshot encoding: 'json' or 'yaml'. Empty infers from the file extension.")
	frameRateFlag := flagSet.Int("frame-rate", 0, "Playback frame rate in Hz. 0 uses the 60 FPS default.")
	maxSpeedFlag := flagSet.Bool("max-speed", false, "Drive playback on a virtual clock as fast as frames commit.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *lessonFlag != "" {
		path = *lessonFlag
	} else if *lFlag != "" {
		path = *lFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Lesson path determined.", "path", path)

	if path == "" {
		slog.Debug("No lesson path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	// A loop override only applies when the flag was actually given, so a
	// lesson's own loop=true survives a plain invocation.
	var loop *bool
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == "loop" {
			loop = loopFlag
		}
	})
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		LessonPath:     path,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		Speed:          *speedFlag,
		Loop:           loop,
		StatusPort:     *statusPortFlag,
		RenderURL:      *renderURLFlag,
		SnapshotOut:    *snapshotOutFlag,
		SnapshotFormat: *snapshotFormatFlag,
		FrameRateHz:    *frameRateFlag,
		MaxSpeed:       *maxSpeedFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "lesson", config.LessonPath)
	return config, false, nil
}
