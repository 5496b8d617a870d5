package driver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"statescan/internal/grammar"
	"statescan/internal/scanner"
	"statescan/internal/source"
	"statescan/internal/token"
	"statescan/internal/trace"
)

// Options configures a tokenize run.
type Options struct {
	Grammar string
	Scan    scanner.Options
	Reader  source.ReaderOptions
	Cache   *DiskCache // nil disables caching
}

// Result holds the outcome of scanning one file.
type Result struct {
	Path    string
	File    *source.File
	Tokens  []token.Token[grammar.Kind]
	Err     error // terminal scan error; Tokens holds what was emitted before it
	Cached  bool
	Elapsed time.Duration
}

// Failed reports whether the scan stopped on an error.
func (r *Result) Failed() bool {
	return r != nil && r.Err != nil
}

// Tokenize loads path and scans it with the configured grammar.
// A load failure or an unknown grammar is returned as error; a scan failure
// is reported in Result.Err.
func Tokenize(ctx context.Context, path string, opts Options) (*Result, error) {
	file, err := source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return TokenizeFile(ctx, file, opts)
}

// TokenizeFile scans an already loaded file.
func TokenizeFile(ctx context.Context, file *source.File, opts Options) (*Result, error) {
	sm, err := grammar.Lookup(opts.Grammar)
	if err != nil {
		return nil, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "tokenize", trace.CurrentSpan(ctx)).
		WithExtra("path", file.Path).
		WithExtra("grammar", opts.Grammar)
	ctx = trace.WithSpan(ctx, span)

	started := time.Now()
	res := &Result{Path: file.Path, File: file}

	key := cacheKey(file, opts)
	if opts.Cache != nil {
		var payload DiskPayload
		hit, cerr := opts.Cache.Get(key, &payload)
		if cerr != nil {
			// битый файл кэша — просто сканируем заново
			trace.Error(tracer, trace.ScopeFile, "cache", span.ID(), cerr)
		}
		if toks, ok := payload.tokens(); hit && ok {
			res.Tokens = toks
			res.Cached = true
			res.Elapsed = time.Since(started)
			span.WithExtra("tokens", strconv.Itoa(len(toks)))
			span.End("cached")
			return res, nil
		}
	}

	scanOpts := opts.Scan
	if scanOpts.Name == "" {
		scanOpts.Name = file.Path
	}
	res.Tokens, res.Err = scanner.Collect(ctx, file.Source(opts.Reader), sm, scanOpts)
	res.Elapsed = time.Since(started)
	span.WithExtra("tokens", strconv.Itoa(len(res.Tokens)))

	if err := ctx.Err(); err != nil {
		span.End("cancelled")
		return nil, err
	}
	if res.Err != nil {
		span.End("failed")
		return res, nil
	}

	if opts.Cache != nil {
		if perr := opts.Cache.Put(key, newDiskPayload(opts.Grammar, file, res.Tokens)); perr != nil {
			trace.Error(tracer, trace.ScopeFile, "cache", span.ID(), perr)
		}
	}
	span.End("ok")
	return res, nil
}
