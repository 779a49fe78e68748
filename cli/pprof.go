//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/udx/log"
	"github.com/ardnew/udx/pkg"
	"github.com/ardnew/udx/profile"
)

// pprofConfig selects a runtime profile to record for the whole run.
type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Record a profile of this kind" placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Directory receiving profiles"                         type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(pkg.CacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: profile.Tag, Title: "Profiling (" + profile.Tag + ")"}
}

// start begins recording when a mode is selected. The returned function
// stops recording and flushes the profile.
func (c pprofConfig) start(ctx context.Context) (stop func()) {
	if c.Mode == "" {
		return func() {}
	}

	attrs := []slog.Attr{slog.String("mode", c.Mode), slog.String("dir", c.Dir)}

	log.DebugContext(ctx, "profiling", attrs...)

	stopper := profile.Profiler{Mode: c.Mode, Path: c.Dir, Quiet: true}.Start()

	return func() {
		stopper.Stop()
		log.DebugContext(ctx, "profile written", attrs...)
	}
}
