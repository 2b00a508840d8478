package app

import (
	"github.com/kangezhang/learngraphics/internal/process"
	"github.com/kangezhang/learngraphics/processes/bfs"
	"github.com/kangezhang/learngraphics/processes/gradientdescent"
	"github.com/kangezhang/learngraphics/processes/rayplane"
)

// coreModules is the definitive list of process modules compiled into the
// lessonplay binary.
var coreModules = []process.Module{
	&bfs.Module{},
	&gradientdescent.Module{},
	&rayplane.Module{},
}
