package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"

	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is how many records one import batch carries. Batches
// have no atomicity: a failure partway through leaves prior records of the
// batch committed.
const DefaultBatchSize = 25

// Importer feeds stop records into the transit network store. Insertion is
// idempotent per record, so a partially failed import can simply be re-run.
type Importer struct {
	stops     *services.StopService
	batchSize int
}

// NewImporter creates an importer. batchSize <= 0 selects the default.
func NewImporter(stops *services.StopService, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{stops: stops, batchSize: batchSize}
}

// ImportReport counts the outcome of an import run.
type ImportReport struct {
	Imported int   `json:"imported"`
	Skipped  int   `json:"skipped"`
	Failed   int   `json:"failed"`
	Cleared  int64 `json:"cleared"`
}

// ParseRecords decodes a seed file's JSON array.
func ParseRecords(data []byte) ([]StopRecord, error) {
	var records []StopRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return records, nil
}

// Run imports the records, optionally clearing every existing stop first.
// Individual record failures are logged and counted, not fatal; the run
// aborts only when the context ends or every record in a batch fails at the
// store, which means the store itself is unreachable. Validation failures
// never trigger the abort, however many of a batch they make up.
func (i *Importer) Run(ctx context.Context, records []StopRecord, clear bool) (*ImportReport, error) {
	report := &ImportReport{}

	if clear {
		result, err := i.stops.ClearAllStops(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to clear stops before import: %w", err)
		}
		report.Cleared = result.Deleted
		log.Info().Int64("deleted", result.Deleted).Msg("Cleared existing stops")
	}

	for start := 0; start < len(records); start += i.batchSize {
		end := start + i.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		storeFailures := 0
		for _, record := range batch {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			result, err := i.stops.CreateStop(ctx, record.Request())
			if err != nil {
				if !errors.Is(err, services.ErrValidation) {
					storeFailures++
				}
				report.Failed++
				log.Warn().
					Err(err).
					Str("name", record.Name).
					Str("line", record.Line).
					Str("city", record.City).
					Msg("Failed to import stop")
				continue
			}
			if result.Created {
				report.Imported++
			} else {
				report.Skipped++
			}
		}

		if storeFailures == len(batch) {
			return report, fmt.Errorf("store unreachable: every record in batch %d-%d failed", start, end)
		}

		log.Debug().Int("from", start).Int("to", end).Msg("Imported batch")
	}

	log.Info().
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Import finished")

	return report, nil
}
