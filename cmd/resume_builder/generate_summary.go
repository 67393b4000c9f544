package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/summary"
	"github.com/jonathan/resume-builder/internal/types"
)

var generateSummaryCmd = &cobra.Command{
	Use:   "generate-summary",
	Short: "Draft a professional summary for a résumé",
	Long:  "Reads a résumé JSON file, asks the Gemini API for a 2-3 sentence professional summary, and prints it or writes it back into the résumé.",
	RunE:  runGenerateSummary,
}

var (
	generateSummaryInputFile  string
	generateSummaryOutputFile string
	generateSummaryAPIKey     string
	generateSummaryVerbose    bool
)

func init() {
	generateSummaryCmd.Flags().StringVarP(&generateSummaryInputFile, "in", "i", "", "Path to résumé JSON file (required)")
	generateSummaryCmd.Flags().StringVarP(&generateSummaryOutputFile, "out", "o", "", "Write the résumé with the new summary to this path")
	generateSummaryCmd.Flags().StringVar(&generateSummaryAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	generateSummaryCmd.Flags().BoolVarP(&generateSummaryVerbose, "verbose", "v", false, "Print the input snapshot and prompt")

	if err := generateSummaryCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(generateSummaryCmd)
}

func runGenerateSummary(cmd *cobra.Command, _ []string) error {
	data, err := readResume(generateSummaryInputFile)
	if err != nil {
		return err
	}

	in := types.SummaryInputFrom(data)
	verbose := generateSummaryVerbose || settings.Verbose
	printer := observability.NewPrinter(cmd.OutOrStdout())

	if verbose {
		printer.PrintSummaryInput(&in)
		printer.PrintPrompt(summary.BuildPrompt(in))
	}

	svc := newSummaryService(generateSummaryAPIKey)
	text, err := svc.Generate(cmd.Context(), in)
	if err != nil {
		if verbose {
			outcome := summary.OutcomeOf("", err)
			printer.PrintFailure(string(outcome.Kind), outcome.Message)
		}
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	if verbose {
		printer.PrintSummary(text)
	}

	if generateSummaryOutputFile == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	data.Summary = text
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(generateSummaryOutputFile)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(generateSummaryOutputFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully generated summary\n")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", generateSummaryOutputFile)
	return nil
}
