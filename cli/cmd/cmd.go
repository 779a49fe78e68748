package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	streamsKey struct{}
	streams    struct {
		in  io.Reader
		out io.Writer
	}
)

// WithStreams returns a new context.Context whose commands read "-" from in
// and write results to out instead of os.Stdin and os.Stdout.
func WithStreams(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, streams{in: in, out: out})
}

func streamsFrom(ctx context.Context) streams {
	s, _ := ctx.Value(streamsKey{}).(streams)

	if s.in == nil {
		s.in = os.Stdin
	}

	if s.out == nil {
		s.out = os.Stdout
	}

	return s
}

// stdinSource is the special location indicator for reading from stdin.
const stdinSource = "-"

// openSource opens path for reading, or returns the context's stdin for
// [stdinSource].
func openSource(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(streamsFrom(ctx).in), nil
	}

	return os.Open(path)
}

// readScript parses the script at path, or from stdin for [stdinSource].
func readScript(ctx context.Context, path string, opts ...lang.Option) (*lang.Script, error) {
	r, err := openSource(ctx, path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}
	defer r.Close()

	return lang.ParseReader(ctx, r, opts...)
}

// langOptions returns the interpreter options shared by every command.
func langOptions(maxDepth int) []lang.Option {
	opts := []lang.Option{lang.WithLogger(log.Default())}
	if maxDepth > 0 {
		opts = append(opts, lang.WithMaxDepth(maxDepth))
	}

	return opts
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles symlinks, absolute/relative paths, and special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// pathKey resolves path through symlinks to the fileKey of its target.
func pathKey(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// sameFile reports whether the paths name the same existing file.
func sameFile(a, b string) bool {
	ka, ok := pathKey(a)
	if !ok {
		return false
	}

	kb, ok := pathKey(b)

	return ok && ka == kb
}
