// Package log provides the structured logger used throughout udx. It is a
// thin layer over [log/slog] with a trace level below debug, named time
// layouts, and colorized handlers for interactive terminals.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("script loaded", slog.String("path", path))
//	logger.Error("evaluation failed", slog.Any("error", err))
//
// # Configuration
//
// Loggers are configured at creation time with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some options overridden, and
// [Logger.With] derives one that adds attributes to every record.
//
// # Default Logger
//
// The package keeps a default logger used by the package-level functions
// ([Info], [ErrorContext], and so on). The command line adjusts it with
// [Config] while flags are parsed, so even parse errors honor the
// requested level and format.
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. The interpreter reports parse, dispatch and
// try/catch activity at trace level.
//
// # Time Formatting
//
// [WithTimeLayout] accepts any named layout from the [time] package, a few
// short aliases ("ms", "us", "ns"), or a literal layout string. An empty
// layout or "none" omits timestamps.
package log
