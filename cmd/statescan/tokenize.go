package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"statescan/internal/driver"
	"statescan/internal/grammar"
	"statescan/internal/observ"
	"statescan/internal/source"
	"statescan/internal/tokfmt"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] path...",
	Short: "Tokenize files or directories with a bundled grammar",
	Long: `Tokenize runs a state-machine grammar over each file (directories are
walked recursively, "-" reads stdin) and prints the emitted tokens.
Defaults come from statescan.toml; flags override them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTokenize,
}

func init() {
	f := tokenizeCmd.Flags()
	f.StringP("grammar", "g", "", "grammar to run (see `statescan grammars`)")
	f.String("format", "", "output format (pretty|json|msgpack)")
	f.Int("jobs", 0, "max parallel files (0=auto)")
	f.String("ui", "auto", "progress UI for directories (auto|on|off)")
	f.Bool("cache", false, "reuse token results from the on-disk cache")
	f.Bool("cache-clear", false, "drop every cached token result before scanning")
	f.Int("buffer", 0, "token channel capacity (0=default, -1=unbuffered)")
	f.Int("max-pending", 0, "fail when a token grows beyond this many characters (0=unlimited)")
	f.Bool("normalize", false, "apply Unicode NFC normalization to the input")
	f.StringSlice("ext", nil, "file extensions to pick up in directories")
	f.Bool("no-context", false, "do not print the source line under scan errors")
}

// tokenizeSettings is statescan.toml with flag overrides applied.
type tokenizeSettings struct {
	dir        driver.DirOptions
	format     tokfmt.Format
	ui         uiMode
	quiet      bool
	timings    bool
	context    bool
	useCache   bool
	clearCache bool
}

func resolveTokenizeSettings(cmd *cobra.Command) (tokenizeSettings, error) {
	var s tokenizeSettings
	cfg := projectConfig
	flags := cmd.Flags()

	if flags.Changed("grammar") {
		cfg.Scan.Grammar, _ = flags.GetString("grammar")
	}
	if _, err := grammar.Lookup(cfg.Scan.Grammar); err != nil {
		return s, err
	}
	scanOpts, err := cfg.Scan.ScannerOptions()
	if err != nil {
		return s, err
	}
	if flags.Changed("buffer") {
		scanOpts.Buffer, _ = flags.GetInt("buffer")
	}
	if flags.Changed("max-pending") {
		scanOpts.MaxPending, _ = flags.GetInt("max-pending")
	}
	readerOpts := cfg.Scan.ReaderOptions()
	if flags.Changed("normalize") {
		readerOpts.Normalize, _ = flags.GetBool("normalize")
	}
	exts := cfg.Scan.Extensions
	if flags.Changed("ext") {
		exts, _ = flags.GetStringSlice("ext")
	}
	jobs, err := cfg.Scan.JobCount()
	if err != nil {
		return s, fmt.Errorf("invalid jobs: %w", err)
	}
	if flags.Changed("jobs") {
		jobs, _ = flags.GetInt("jobs")
	}

	formatStr := cfg.Output.Format
	if flags.Changed("format") {
		formatStr, _ = flags.GetString("format")
	}
	if s.format, err = tokfmt.ParseFormat(formatStr); err != nil {
		return s, err
	}

	uiValue, _ := flags.GetString("ui")
	if s.ui, err = readUIMode(uiValue); err != nil {
		return s, err
	}

	s.useCache = cfg.Scan.Cache
	if flags.Changed("cache") {
		s.useCache, _ = flags.GetBool("cache")
	}
	s.clearCache, _ = flags.GetBool("cache-clear")
	noContext, _ := flags.GetBool("no-context")
	s.context = cfg.Output.Context && !noContext
	s.quiet, _ = cmd.Root().PersistentFlags().GetBool("quiet")
	s.timings, _ = cmd.Root().PersistentFlags().GetBool("timings")

	s.dir = driver.DirOptions{
		Options: driver.Options{
			Grammar: cfg.Scan.Grammar,
			Scan:    scanOpts,
			Reader:  readerOpts,
		},
		Extensions: exts,
		Jobs:       jobs,
	}
	return s, nil
}

func runTokenize(cmd *cobra.Command, args []string) error {
	settings, err := resolveTokenizeSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	timer := observ.NewTimer()

	if settings.useCache || settings.clearCache {
		cache, cerr := driver.OpenDiskCache("statescan")
		if cerr != nil {
			return fmt.Errorf("failed to open cache: %w", cerr)
		}
		if settings.clearCache {
			if cerr := cache.DropAll(); cerr != nil {
				return fmt.Errorf("failed to clear cache: %w", cerr)
			}
		}
		if settings.useCache {
			settings.dir.Cache = cache
		}
	}

	listDone := timer.Track("list")
	files, hasDir, stdin, err := expandInputs(args, settings.dir.Extensions)
	if err != nil {
		return err
	}
	listDone(uint64(len(files)), "")

	scanDone := timer.Track("tokenize")
	var results []driver.Result
	if stdin != nil {
		res, err := driver.TokenizeFile(ctx, stdin, settings.dir.Options)
		if err != nil {
			return err
		}
		results = append(results, *res)
	}
	if len(files) > 0 {
		var batch []driver.Result
		title := fmt.Sprintf("tokenize [%s]", settings.dir.Grammar)
		if hasDir && shouldUseTUI(settings.ui) {
			batch, err = runTokenizeWithUI(ctx, title, files, settings.dir)
		} else {
			batch, err = driver.TokenizeFiles(ctx, files, settings.dir)
		}
		if err != nil {
			return fmt.Errorf("tokenization failed: %w", err)
		}
		results = append(results, batch...)
	}
	summary := driver.Summarize(results)
	scanDone(uint64(summary.Tokens), fmt.Sprintf("%d files, %d cached", summary.Files, summary.Cached))

	renderDone := timer.Track("render")
	out := cmd.OutOrStdout()
	opts := tokfmt.Options{
		Color:   settings.format == tokfmt.FormatPretty && useColor(cmd, os.Stdout),
		Context: settings.context,
		Quiet:   settings.quiet,
	}
	if err := tokfmt.Write(out, settings.format, toEntries(results), opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	renderDone(0, settings.format.String())

	if settings.timings {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	if summary.Failed > 0 {
		if settings.format != tokfmt.FormatPretty {
			// в json/msgpack ошибки уже внутри вывода; дублируем кратко в stderr
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d files failed\n", summary.Failed, summary.Files)
		}
		return errScanFailed
	}
	return nil
}

// expandInputs turns the arguments into a sorted file list per directory.
// "-" is read from stdin into a virtual file.
func expandInputs(args []string, exts []string) (files []string, hasDir bool, stdin *source.File, err error) {
	for _, arg := range args {
		if arg == "-" {
			if stdin != nil {
				return nil, false, nil, fmt.Errorf("stdin given more than once")
			}
			data, rerr := io.ReadAll(os.Stdin)
			if rerr != nil {
				return nil, false, nil, fmt.Errorf("failed to read stdin: %w", rerr)
			}
			stdin = source.NewVirtual("<stdin>", data)
			continue
		}
		st, serr := os.Stat(arg)
		if serr != nil {
			return nil, false, nil, fmt.Errorf("cannot access %q: %w", arg, serr)
		}
		if !st.IsDir() {
			files = append(files, arg)
			continue
		}
		hasDir = true
		listed, lerr := driver.ListFiles(arg, exts)
		if lerr != nil {
			return nil, false, nil, fmt.Errorf("failed to list %q: %w", arg, lerr)
		}
		if len(listed) == 0 {
			fmt.Fprintf(os.Stderr, "warning: no %s files in %s\n", strings.Join(exts, "/"), arg)
		}
		files = append(files, listed...)
	}
	return files, hasDir, stdin, nil
}

func toEntries(results []driver.Result) []tokfmt.Entry[grammar.Kind] {
	entries := make([]tokfmt.Entry[grammar.Kind], len(results))
	for i, r := range results {
		entries[i] = tokfmt.Entry[grammar.Kind]{
			Path:   r.Path,
			File:   r.File,
			Tokens: r.Tokens,
			Err:    r.Err,
			Cached: r.Cached,
		}
	}
	return entries
}
