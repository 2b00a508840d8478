package lesson

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/kangezhang/learngraphics/internal/ctxlog"
	"github.com/kangezhang/learngraphics/internal/fsutil"
)

// Load parses the lesson at path (a file, or a directory of .hcl files) into
// exactly one Lesson. Multiple files may contribute blocks, but together they
// must declare a single lesson.
func Load(ctx context.Context, path string) (*Lesson, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindLessonFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered lesson files.", "count", len(files))

	parser := hclparse.NewParser()
	var lessons []*Lesson
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse lesson file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode lesson file %s: %w", file, diags)
		}
		lessons = append(lessons, root.Lessons...)
	}

	switch len(lessons) {
	case 0:
		return nil, fmt.Errorf("no lesson block found under %s", path)
	case 1:
	default:
		return nil, fmt.Errorf("expected one lesson block under %s, found %d", path, len(lessons))
	}

	l := lessons[0]
	if l.Timeline == nil {
		return nil, fmt.Errorf("lesson %q has no timeline block", l.Name)
	}
	logger.Debug("Lesson loaded.",
		"name", l.Name,
		"tracks", len(l.Timeline.Tracks),
		"markers", len(l.Timeline.Markers),
		"processes", len(l.Processes),
	)
	return l, nil
}
