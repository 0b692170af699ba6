package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashtho/shashtho/internal/app"
	"github.com/shashtho/shashtho/internal/config"
	"github.com/shashtho/shashtho/internal/language"
	"github.com/shashtho/shashtho/internal/log"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <language>",
	Short: "Build a language's vector index from source files",
	Long: `Ingest reads {data_dir}/{language}/*.txt, splits the content into
chunks by markdown headings, embeds them, and writes the result into the
language's persistent vector index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// runIngest builds the index for one language from the command line.
func runIngest(ctx context.Context, langArg string) error {
	lang, err := language.Parse(langArg)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger := log.New(log.Config{Level: parseLevel(cfg.LogLevel), JSON: cfg.LogJSON})
	slog.SetDefault(logger)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	result, err := a.Builder.Build(ctx, lang)
	if err != nil {
		return fmt.Errorf("building %s index: %w", lang, err)
	}

	fmt.Printf("Stored %d chunks into vector index at '%s' (%s)\n",
		result.Chunks, result.Path, result.Duration.Round(time.Millisecond))
	return nil
}
