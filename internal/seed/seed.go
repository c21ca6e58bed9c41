// Package seed implements the seed-dataset pipeline: importing stop records
// into the transit network store, exporting them back out, and reporting on
// what is stored. The dataset is a JSON array of stop records without
// server-assigned fields, sorted for diff-friendliness.
package seed

import (
	"sort"
	"time"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"
)

// StopRecord is one seed-file entry: a stop minus the id and creation time
// the server assigns.
type StopRecord struct {
	Name             string              `json:"name"`
	Type             models.StopType     `json:"type"`
	City             string              `json:"city"`
	Line             string              `json:"line"`
	DistanceFromCity float64             `json:"distanceFromCity"`
	Zone             *int                `json:"zone,omitempty"`
	Coordinates      *models.Coordinates `json:"coordinates,omitempty"`
	Accessibility    *bool               `json:"accessibility,omitempty"`
	Code             *string             `json:"code,omitempty"`
}

// Request converts the record into a create call.
func (r StopRecord) Request() services.CreateStopRequest {
	return services.CreateStopRequest{
		Name:             r.Name,
		Type:             r.Type,
		City:             r.City,
		Line:             r.Line,
		DistanceFromCity: r.DistanceFromCity,
		Zone:             r.Zone,
		Coordinates:      r.Coordinates,
		Accessibility:    r.Accessibility,
		Code:             r.Code,
	}
}

// RecordFromStop strips the server-assigned fields from a stored stop.
func RecordFromStop(s *models.Stop) StopRecord {
	return StopRecord{
		Name:             s.Name,
		Type:             s.Type,
		City:             s.City,
		Line:             s.Line,
		DistanceFromCity: s.DistanceFromCity,
		Zone:             s.Zone,
		Coordinates:      s.Coordinates,
		Accessibility:    s.Accessibility,
		Code:             s.Code,
	}
}

// SortRecords orders records by (city, type, line, distanceFromCity) so
// exported files diff cleanly between runs.
func SortRecords(records []StopRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.City != b.City {
			return a.City < b.City
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.DistanceFromCity < b.DistanceFromCity
	})
}

// Metadata describes an exported dataset.
type Metadata struct {
	ExportedAt time.Time `json:"exportedAt"`
	TotalStops int       `json:"totalStops"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Breakdown summarizes the dataset's coverage.
type Breakdown struct {
	Cities []string `json:"cities"`
	Types  []string `json:"types"`
	Lines  int      `json:"lines"`
}

// BuildMetadata computes metadata for a sorted record set.
func BuildMetadata(records []StopRecord, now time.Time) Metadata {
	cities := map[string]bool{}
	types := map[string]bool{}
	lines := map[string]bool{}
	for _, r := range records {
		cities[r.City] = true
		types[string(r.Type)] = true
		lines[r.City+"/"+r.Line] = true
	}
	return Metadata{
		ExportedAt: now,
		TotalStops: len(records),
		Breakdown: Breakdown{
			Cities: sortedKeys(cities),
			Types:  sortedKeys(types),
			Lines:  len(lines),
		},
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
