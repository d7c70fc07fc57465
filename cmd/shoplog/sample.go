package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shoplog/internal/generator"
)

var (
	samplePurchases int
	sampleDupPct    float64
	sampleNoisePct  float64
	sampleSmallCaps float64
	sampleSeed      int64
	sampleOut       string
)

func newSampleCmd() *cobra.Command {
	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic shop log",
		Args:  cobra.NoArgs,
		RunE:  runSampleCmd,
	}
	sampleCmd.Flags().IntVar(&samplePurchases, "purchases", 200, "number of purchases")
	sampleCmd.Flags().Float64Var(&sampleDupPct, "dup", 0.2, "probability of a duplicated purchase line")
	sampleCmd.Flags().Float64Var(&sampleNoisePct, "noise", 0.3, "probability of a chat line between purchases")
	sampleCmd.Flags().Float64Var(&sampleSmallCaps, "smallcaps", 0.5, "probability of the small-caps verb")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 0, "random seed (0: time based)")
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "", "output file (default: stdout)")
	return sampleCmd
}

func runSampleCmd(cmd *cobra.Command, _ []string) error {
	if samplePurchases <= 0 {
		return fmt.Errorf("--purchases must be > 0")
	}
	for name, v := range map[string]float64{"dup": sampleDupPct, "noise": sampleNoisePct, "smallcaps": sampleSmallCaps} {
		if v < 0 || v > 1 {
			return fmt.Errorf("--%s must be between 0 and 1", name)
		}
	}

	gen := generator.New()
	if sampleSeed != 0 {
		gen = generator.NewSeeded(sampleSeed)
	}
	lines := gen.Generate(generator.Options{
		Purchases:    samplePurchases,
		DupPct:       sampleDupPct,
		NoisePct:     sampleNoisePct,
		SmallCapsPct: sampleSmallCaps,
	})

	if sampleOut == "" {
		return writeLines(cmd.OutOrStdout(), lines)
	}
	if err := writeLogFile(sampleOut, lines); err != nil {
		return fmt.Errorf("failed to write %s: %w", sampleOut, err)
	}
	logErrf("Wrote %d lines to %s\n", len(lines), sampleOut)
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	writer := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return fmt.Errorf("failed to write log: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}
	return nil
}

// writeLogFile writes through a temp file so a partial log never replaces an existing one.
func writeLogFile(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "shoplog-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp log: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := writeLines(tmpFile, lines); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close log: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}
