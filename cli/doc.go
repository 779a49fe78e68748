// Package cli contains the command line interface for udx.
//
// # Usage
//
// Running a script is the default command, so the script path may follow
// the program name directly:
//
//	udx transform.udx -i orders.json
//	udx run transform.udx -i orders=json:orders.txt -i rates=rates.csv -o out.yaml
//	udx eval '[1, 2, 3] |> map((x) => x * x) |> sum'
//	udx fmt literal transform.udx
//	udx repl -i orders.json
//
// # Configuration
//
// Flag defaults are read from $XDG_CONFIG_HOME/udx/config.udx, a udx
// script evaluating to an object (see [resolve]), and from config.udx.json
// next to it. "udx init" writes the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o udx .
//
// The profiling flags are:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default
//     $XDG_CACHE_HOME/udx/pprof)
package cli
