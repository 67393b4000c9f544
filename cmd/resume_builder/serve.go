package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the résumé and summary generation endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, PORT, or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := settings.Port
	if servePort != 0 {
		port = servePort
	}

	svc := newSummaryService("")
	if !svc.Configured() {
		logger.Warn("no API key configured; summary generation will fail until GEMINI_API_KEY is set")
	}

	srv := server.New(server.Config{Port: port, Logger: logger}, resume.New(), svc)
	if err := srv.Start(cmd.Context()); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
