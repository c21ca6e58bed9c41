// Command seed manages the transit seed dataset: importing it into the
// store, exporting the store back to a dataset, and checking what is
// loaded. The store URL comes from the WIMY_DATABASE_URL environment
// variable; a .env file is honored.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/repository"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/seed"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultDataset = "seeds/transit-stops.json"

var (
	flagClear     bool
	flagBatchSize int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore connects to the store named by WIMY_DATABASE_URL. The caller
// must defer store.Close().
func openStore(ctx context.Context) (*repository.Store, error) {
	url := os.Getenv("WIMY_DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("WIMY_DATABASE_URL is not set")
	}
	return repository.NewPostgresStore(ctx, url)
}

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manage the transit seed dataset",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; the environment may be set directly.
		_ = godotenv.Load()
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	},
}

var importCmd = &cobra.Command{
	Use:   "import [dataset]",
	Short: "Import stops from a seed dataset (local path or s3://bucket/key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		location := defaultDataset
		if len(args) == 1 {
			location = args[0]
		}

		src, err := seed.Open(ctx, location)
		if err != nil {
			return err
		}
		data, err := src.Read(ctx)
		if err != nil {
			return err
		}
		records, err := seed.ParseRecords(data)
		if err != nil {
			return err
		}
		fmt.Printf("Found %d stops in %s\n", len(records), src.Location())

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		stops := services.NewStopService(store.Stops, nil)
		report, err := seed.NewImporter(stops, flagBatchSize).Run(ctx, records, flagClear)
		if err != nil {
			return fmt.Errorf("import aborted: %w", err)
		}

		if flagClear {
			fmt.Printf("Cleared %d existing stops\n", report.Cleared)
		}
		fmt.Printf("Imported %d stops, skipped %d duplicates, %d failures\n",
			report.Imported, report.Skipped, report.Failed)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [dataset]",
	Short: "Export stored stops to a seed dataset (local path or s3://bucket/key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		location := defaultDataset
		if len(args) == 1 {
			location = args[0]
		}

		dst, err := seed.Open(ctx, location)
		if err != nil {
			return err
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		stops := services.NewStopService(store.Stops, nil)
		metadata, err := seed.NewExporter(stops).Run(ctx, dst)
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d stops to %s\n", metadata.TotalStops, dst.Location())
		fmt.Printf("Cities: %v, lines: %d\n", metadata.Breakdown.Cities, metadata.Breakdown.Lines)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report what the store currently holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		stops := services.NewStopService(store.Stops, nil)
		report, err := seed.Check(ctx, stops)
		if err != nil {
			return err
		}

		fmt.Print(report.Render())
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&flagClear, "clear", false, "clear all existing stops before importing")
	importCmd.Flags().IntVar(&flagBatchSize, "batch-size", seed.DefaultBatchSize, "records per import batch")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(checkCmd)
}
