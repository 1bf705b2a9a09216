// clientctx infers a browser client's runtime context and publishes it to
// an embedded feedback widget.
//
// The same inference runs from the command line, behind an HTTP and
// websocket server, and as MCP tools for AI agents.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/assembler"
	diffpkg "github.com/dmitriimaksimovdevelop/clientctx/internal/diff"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/output"
)

var (
	version = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clientctx",
		Short: "Client context inference for feedback widgets",
		Long: `clientctx infers a structured snapshot of a browser client's runtime
context (environment tier, device and OS, network quality, session
freshness, display state) and publishes it to a feedback widget.

detect    infer a record for a page described by flags
simulate  run the refresh engine against a simulated widget
diff      compare two records
serve     HTTP API and websocket widget bridge
mcp       Model Context Protocol server on stdio`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newDetectCmd(), newSimulateCmd(), newDiffCmd(), newServeCmd(), newMCPCmd())
	return rootCmd
}

func newDetectCmd() *cobra.Command {
	var (
		page    pageFlags
		out     string
		quiet   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Infer the diagnostic record for a page",
		Long:  "Run every detector against the page described by the flags and print the record as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := output.NewVerboseProgress(!quiet, verbose)

			snap, err := page.snapshot()
			if err != nil {
				return err
			}
			hints, err := page.hints()
			if err != nil {
				return err
			}
			now, err := page.clock()
			if err != nil {
				return err
			}

			progress.Debug("detecting context for host %q path %q", snap.Host, snap.Path)
			asm := assembler.New(snap, hints,
				assembler.WithClock(now),
				assembler.WithLogger(progress.Logger()))
			rec := asm.Build()
			if rec.Failed() {
				progress.Warn("assembly failed, emitting minimal record")
			}
			return output.WriteJSON(rec, out)
		},
	}

	page.register(cmd.Flags())
	cmd.Flags().StringVarP(&out, "output", "o", "-", "Output file path (- for stdout)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func newDiffCmd() *cobra.Command {
	var diffOutput string

	cmd := &cobra.Command{
		Use:   "diff <baseline.json> <current.json>",
		Short: "Compare two records",
		Long:  "List every record field whose value differs between two saved records.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], diffOutput)
		},
	}
	cmd.Flags().StringVarP(&diffOutput, "output", "o", "-", "Output diff file path")
	return cmd
}

// runDiff handles the `diff` command.
func runDiff(baselinePath, currentPath, outputPath string) error {
	baseline, err := diffpkg.LoadRecord(baselinePath)
	if err != nil {
		return fmt.Errorf("load baseline: %w", err)
	}
	current, err := diffpkg.LoadRecord(currentPath)
	if err != nil {
		return fmt.Errorf("load current: %w", err)
	}

	result := diffpkg.Compare(*baseline, *current)

	if outputPath == "-" {
		fmt.Print(diffpkg.Format(result))
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0644)
}
