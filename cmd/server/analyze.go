package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rahul4469/runtime-calculator/internal/logging"
	"github.com/rahul4469/runtime-calculator/internal/models"
	"github.com/rahul4469/runtime-calculator/internal/services"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		delay   time.Duration
		seed    uint64
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a snippet from a file or stdin",
		Long: `Run the analyzer once and print its verdict.

If no file is specified, reads from stdin.

Examples:
  runtime-calculator analyze snippet.js
  cat snippet.go | runtime-calculator analyze --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSnippet(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var chooser services.Chooser
			if seed != 0 {
				chooser = services.NewSeededChooser(seed)
			}
			svc := services.NewSubmissionService(
				models.NewMemoryStore(models.DefaultStateTTL),
				services.NewSimulatedAnalyzer(delay, chooser),
				logging.NewNop(),
			)

			result, err := svc.Analyze(cmd.Context(), code)
			if errors.Is(err, models.ErrEmptyInput) {
				return errors.New(models.MsgEmptyInput)
			}
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), result, jsonOut)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", services.DefaultAnalyzeDelay, "simulated analysis latency")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible verdicts (0 = random)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")

	return cmd
}

func readSnippet(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

func printResult(w io.Writer, result models.AnalysisResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	_, err := fmt.Fprintf(w, "Runtime:   %s\nReasoning: %s\nStatus:    %s\n", result.Runtime, result.Reasoning, result.Status)
	return err
}
