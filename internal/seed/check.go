package seed

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"
)

// CheckReport summarizes what the store currently holds.
type CheckReport struct {
	Total      int            `json:"total"`
	ByCityType map[string]int `json:"byCityType"`
	ByLine     map[string]int `json:"byLine"`
}

// Check inspects the stored stops and builds a breakdown report.
func Check(ctx context.Context, stops *services.StopService) (*CheckReport, error) {
	all, err := stops.ListStops(ctx, models.StopFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list stops: %w", err)
	}

	report := &CheckReport{
		Total:      len(all),
		ByCityType: map[string]int{},
		ByLine:     map[string]int{},
	}
	for _, stop := range all {
		report.ByCityType[stop.City+" "+string(stop.Type)]++
		report.ByLine[stop.Line]++
	}
	return report, nil
}

// Render formats the report for terminal output.
func (r *CheckReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total stops: %d\n", r.Total)

	b.WriteString("\nBy city and type:\n")
	for _, key := range sortedReportKeys(r.ByCityType) {
		fmt.Fprintf(&b, "  %s: %d stops\n", key, r.ByCityType[key])
	}

	b.WriteString("\nBy line:\n")
	for _, key := range sortedReportKeys(r.ByLine) {
		fmt.Fprintf(&b, "  %s: %d stops\n", key, r.ByLine[key])
	}
	return b.String()
}

func sortedReportKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
