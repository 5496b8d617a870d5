package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"statescan/internal/config"
	"statescan/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "statescan",
	Short: "State-function driven lexical scanner",
	Long: `statescan runs state-machine grammars over text files and prints the
tokens they emit, with positions, in pretty, JSON or msgpack form.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepareRun,
}

var (
	// projectConfig is statescan.toml (or defaults) resolved before each command.
	projectConfig = config.Default()
	// finishTracing flushes the tracer; replaced by setupTracing.
	finishTracing = func(failed bool) {}
	// stopProfiling writes requested profiles; replaced by setupProfiling.
	stopProfiling = func() {}
)

// errScanFailed signals a non-zero exit whose details were already printed.
var errScanFailed = errors.New("scan failed")

func init() {
	rootCmd.Version = version.Current().Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(grammarsCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("config", "", "path to statescan.toml (default: search upwards from the working directory)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity for ring mode")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
}

// main executes the root command. Interrupts cancel the command context.
// Any error exits with status 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	stopProfiling()
	finishTracing(err != nil)
	if err != nil {
		if !errors.Is(err, errScanFailed) {
			rootCmd.PrintErrln("error:", err)
		}
		os.Exit(1)
	}
}

func prepareRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	projectConfig = cfg

	finish, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	finishTracing = finish

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	stopProfiling = stopProf
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color (falling back to [output].color) for f.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode := projectConfig.Output.Color
	if flag := cmd.Root().PersistentFlags().Lookup("color"); flag != nil && flag.Changed {
		mode = flag.Value.String()
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}
