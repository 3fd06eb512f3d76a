// Package main provides the entry point for the story context CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "story_agent",
	Short: "Epic-aware user story retrieval, generation, and evaluation",
	Long:  "story_agent retrieves the stories of an epic most similar to a query, generates new stories conditioned on them, and measures how consistent generated stories are with the epic.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
