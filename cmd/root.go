// Package cmd implements the shashtho command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shashtho",
	Short: "Shashtho - multilingual menstrual-health question answering",
	Long: `Shashtho answers menstrual-health questions in English and Bangla,
grounding each answer in a per-language vector index of educational
material and the user's recent conversation.

Run 'shashtho serve' to start the HTTP API, or 'shashtho ingest' to
build a language's vector index from source files.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
