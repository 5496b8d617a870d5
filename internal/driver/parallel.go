package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"statescan/internal/source"
	"statescan/internal/trace"
)

// DefaultExtensions is used by ListFiles when no extensions are given.
var DefaultExtensions = []string{".txt"}

// ListFiles returns the sorted list of files under dir whose extension is
// one of exts. Hidden directories are skipped.
func ListFiles(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExtension(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, want := range exts {
		if want == "*" {
			return true
		}
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// DirOptions configures TokenizeDir.
type DirOptions struct {
	Options
	Extensions []string
	Jobs       int // 0 means GOMAXPROCS
	Progress   ProgressSink
}

// TokenizeDir scans every matching file under dir in parallel. Results come
// back in the sorted order of ListFiles regardless of completion order.
// A file that fails to load or scan is reported in its Result; only
// cancellation or an invalid configuration abort the whole run.
func TokenizeDir(ctx context.Context, dir string, opts DirOptions) ([]Result, error) {
	files, err := ListFiles(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	return TokenizeFiles(ctx, files, opts)
}

// TokenizeFiles scans the given files in parallel; see TokenizeDir.
func TokenizeFiles(ctx context.Context, files []string, opts DirOptions) ([]Result, error) {
	if len(files) == 0 {
		return nil, nil
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "tokenize_dir", trace.CurrentSpan(ctx)).
		WithExtra("files", strconv.Itoa(len(files)))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	for _, path := range files {
		notify(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			notify(opts.Progress, Event{File: path, Status: StatusWorking})
			started := time.Now()

			file, err := source.Load(path)
			if err != nil {
				err = fmt.Errorf("load %s: %w", path, err)
				results[i] = Result{Path: path, Err: err}
				notify(opts.Progress, Event{File: path, Status: StatusError, Err: err, Elapsed: time.Since(started)})
				return nil
			}

			res, err := TokenizeFile(gctx, file, opts.Options)
			if err != nil {
				return err
			}
			res.Path = path
			results[i] = *res

			evt := Event{File: path, Status: StatusDone, Tokens: len(res.Tokens), Elapsed: res.Elapsed}
			switch {
			case res.Err != nil:
				evt.Status, evt.Err = StatusError, res.Err
			case res.Cached:
				evt.Status = StatusCached
			}
			notify(opts.Progress, evt)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Summary aggregates a batch of results.
type Summary struct {
	Files  int
	Failed int
	Cached int
	Tokens int
}

// Summarize counts files, failures, cache hits and tokens.
func Summarize(results []Result) Summary {
	s := Summary{Files: len(results)}
	for i := range results {
		r := &results[i]
		s.Tokens += len(r.Tokens)
		if r.Err != nil {
			s.Failed++
		}
		if r.Cached {
			s.Cached++
		}
	}
	return s
}
