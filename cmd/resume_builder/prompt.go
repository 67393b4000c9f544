package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/summary"
	"github.com/jonathan/resume-builder/internal/types"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the summary prompt for a résumé",
	Long:  "Builds the prompt generate-summary would send for a résumé file, without calling the API.",
	RunE:  runPrompt,
}

var promptInputFile string

func init() {
	promptCmd.Flags().StringVarP(&promptInputFile, "in", "i", "", "Path to résumé JSON file (required)")
	if err := promptCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, _ []string) error {
	data, err := readResume(promptInputFile)
	if err != nil {
		return err
	}

	in := types.SummaryInputFrom(data)
	if in.IsEmpty() {
		return errors.New(summary.MsgNoInput)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), summary.BuildPrompt(in))
	return nil
}
