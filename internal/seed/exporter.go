package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"

	"github.com/rs/zerolog/log"
)

// MetadataName is the metadata document written next to an exported
// dataset.
const MetadataName = "transit-stops-metadata.json"

// Exporter writes the store's stops back out as a seed dataset. Export and
// import are a pure data round trip; no fields are transformed.
type Exporter struct {
	stops *services.StopService
}

// NewExporter creates an exporter.
func NewExporter(stops *services.StopService) *Exporter {
	return &Exporter{stops: stops}
}

// Run lists every stop, strips server-assigned fields, sorts for stable
// diffs and writes the dataset plus its metadata document to dst.
func (e *Exporter) Run(ctx context.Context, dst Source) (*Metadata, error) {
	stops, err := e.stops.ListStops(ctx, models.StopFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list stops: %w", err)
	}

	records := make([]StopRecord, 0, len(stops))
	for _, stop := range stops {
		records = append(records, RecordFromStop(stop))
	}
	SortRecords(records)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode seed data: %w", err)
	}
	if err := dst.Write(ctx, data); err != nil {
		return nil, err
	}

	metadata := BuildMetadata(records, time.Now().UTC())
	metadataJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	metadataDst := dst.Sibling(MetadataName)
	if err := metadataDst.Write(ctx, metadataJSON); err != nil {
		return nil, err
	}

	log.Info().
		Int("stops", len(records)).
		Str("dataset", dst.Location()).
		Str("metadata", metadataDst.Location()).
		Msg("Export finished")

	return &metadata, nil
}
