package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed scripts keyed by the hash of their source and
// parse options. Entries are never evicted; see [ClearCache].
//
//nolint:gochecknoglobals
var globalCache sync.Map

// state is the parse result for one cache key. The first caller parses;
// concurrent callers wait on once.
type state struct {
	once   sync.Once
	script *Script
	err    error
}

// hashOptions encodes options using gob and hashes with xxh3.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(opts)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader reads a script from r and parses it like [ParseString].
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Script, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true))

	return parseCached(ctx, string(data), cfg)
}

// parseCached returns the cached parse of source, parsing it on first use.
// The returned script is a fresh value sharing the cached syntax tree, with
// its own options.
func parseCached(ctx context.Context, source string, cfg config) (*Script, error) {
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(cfg.opts)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := globalCache.LoadOrStore(key, new(state))

	st, ok := value.(*state)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid entry type in cache"))
	}

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit))

	st.once.Do(func() {
		st.script, st.err = parse(ctx, source, cfg)
	})

	if st.err != nil {
		return nil, st.err
	}

	s := *st.script
	s.cfg = cfg

	return &s, nil
}

// ClearCache removes all cached scripts.
func ClearCache() {
	globalCache.Clear()
}
