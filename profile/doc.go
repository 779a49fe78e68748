// Package profile starts optional runtime profiling of udx through
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof -o udx .
//	udx --pprof-mode cpu run transform.udx -i orders.json
//
// Without the tag [Modes] is empty and [Profiler.Start] returns a no-op
// [Stopper], so callers never need to check the build configuration.
//
// Profiles are written to the configured directory, by default
// $XDG_CACHE_HOME/udx/pprof, under the file name pkg/profile chooses for
// the mode (cpu.pprof, mem.pprof, trace.out, ...). Inspect them with
//
//	go tool pprof -http=: udx cpu.pprof
//
// The pprof build also registers the net/http/pprof handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag that enables profiling.
const Tag = "pprof"

// Stopper stops a running profile and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes one profiling session.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory; empty uses the working directory
	Quiet bool   // suppress pkg/profile's own log lines
}

// Start begins profiling. It returns a no-op Stopper when p.Mode is empty
// or unknown, or when built without the pprof tag.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return nop{}
	}

	return start(p)
}

type nop struct{}

func (nop) Stop() {}
