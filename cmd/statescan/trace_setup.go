package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"statescan/internal/config"
	"statescan/internal/trace"
)

// setupTracing inspects trace-related flags, falling back to the [trace]
// section of statescan.toml, and attaches the tracer to the command context.
// The returned func flushes and closes it; with failed set, a ring buffer is
// dumped to stderr first.
func setupTracing(cmd *cobra.Command, fileCfg config.TraceConfig) (func(failed bool), error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := stringFlag(flags, "trace", fileCfg.Output)
	if err != nil {
		return nil, err
	}
	levelStr, err := stringFlag(flags, "trace-level", fileCfg.Level)
	if err != nil {
		return nil, err
	}
	modeStr, err := stringFlag(flags, "trace-mode", fileCfg.Mode)
	if err != nil {
		return nil, err
	}

	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if !flags.Changed("trace-ring-size") && fileCfg.RingSize > 0 {
		if ringSize, err = fileCfg.RingCapacity(); err != nil {
			return nil, fmt.Errorf("invalid trace ring size: %w", err)
		}
	}

	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	if !flags.Changed("trace-heartbeat") {
		if heartbeatInterval, err = fileCfg.HeartbeatInterval(); err != nil {
			return nil, err
		}
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// --trace без уровня включает phase
	if level == trace.LevelOff && flags.Changed("trace") && !flags.Changed("trace-level") {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	cleanup := func(failed bool) {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if failed && mode == trace.ModeRing {
			if ring := trace.RingOf(tracer); ring != nil {
				if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
				}
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func stringFlag(flags *pflag.FlagSet, name, fallback string) (string, error) {
	value, err := flags.GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !flags.Changed(name) && fallback != "" {
		return fallback, nil
	}
	return value, nil
}
