package main

import (
	"encoding/json"
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"statescan/internal/grammar"
)

var grammarsCmd = &cobra.Command{
	Use:   "grammars",
	Short: "List the bundled grammars",
	Args:  cobra.NoArgs,
	RunE:  runGrammars,
}

func init() {
	grammarsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type grammarPayload struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Default bool   `json:"default,omitempty"`
}

func runGrammars(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	entries := grammar.Entries()
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		payload := make([]grammarPayload, len(entries))
		for i, e := range entries {
			payload[i] = grammarPayload{Name: e.Name, Summary: e.Summary, Default: e.Name == projectConfig.Scan.Grammar}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
		width := 0
		for _, e := range entries {
			width = max(width, runewidth.StringWidth(e.Name))
		}
		for _, e := range entries {
			marker := " "
			if e.Name == projectConfig.Scan.Grammar {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s  %s\n", marker, runewidth.FillRight(e.Name, width), e.Summary)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
