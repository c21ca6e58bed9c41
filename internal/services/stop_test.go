package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/repository"
)

func newTestStopService(t *testing.T) *StopService {
	t.Helper()
	return NewStopService(repository.NewMemoryStore().Stops, nil)
}

func mustCreateStop(t *testing.T, svc *StopService, name string, typ models.StopType, city, line string, distance float64) string {
	t.Helper()
	result, err := svc.CreateStop(context.Background(), CreateStopRequest{
		Name:             name,
		Type:             typ,
		City:             city,
		Line:             line,
		DistanceFromCity: distance,
	})
	if err != nil {
		t.Fatalf("CreateStop(%s) error = %v", name, err)
	}
	return result.ID
}

func TestStopService_CreateStop(t *testing.T) {
	t.Run("assigns an id and reports created", func(t *testing.T) {
		svc := newTestStopService(t)

		result, err := svc.CreateStop(context.Background(), CreateStopRequest{
			Name: "Flinders Street", Type: models.StopTypeTrain,
			City: "Melbourne", Line: "Alamein", DistanceFromCity: 0,
		})
		if err != nil {
			t.Fatalf("CreateStop() error = %v", err)
		}
		if result.ID == "" {
			t.Error("ID is empty")
		}
		if !result.Created {
			t.Error("Created = false, want true")
		}
	})

	t.Run("duplicate triple returns the existing id and inserts nothing", func(t *testing.T) {
		svc := newTestStopService(t)

		first, err := svc.CreateStop(context.Background(), CreateStopRequest{
			Name: "Richmond", Type: models.StopTypeTrain,
			City: "Melbourne", Line: "Alamein", DistanceFromCity: 2.8,
		})
		if err != nil {
			t.Fatalf("CreateStop() error = %v", err)
		}

		// Same triple, different distance: nothing is merged or updated.
		second, err := svc.CreateStop(context.Background(), CreateStopRequest{
			Name: "Richmond", Type: models.StopTypeTrain,
			City: "Melbourne", Line: "Alamein", DistanceFromCity: 99,
		})
		if err != nil {
			t.Fatalf("CreateStop() duplicate error = %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("duplicate ID = %v, want %v", second.ID, first.ID)
		}
		if second.Created {
			t.Error("duplicate Created = true, want false")
		}

		stops, err := svc.ListStops(context.Background(), models.StopFilter{})
		if err != nil {
			t.Fatalf("ListStops() error = %v", err)
		}
		if len(stops) != 1 {
			t.Errorf("stop count = %d, want 1", len(stops))
		}
		if stops[0].DistanceFromCity != 2.8 {
			t.Errorf("DistanceFromCity = %v, want 2.8 (first write kept)", stops[0].DistanceFromCity)
		}
	})

	t.Run("same name on a different line is a distinct stop", func(t *testing.T) {
		svc := newTestStopService(t)

		a := mustCreateStop(t, svc, "Flinders Street", models.StopTypeTrain, "Melbourne", "Alamein", 0)
		b := mustCreateStop(t, svc, "Flinders Street", models.StopTypeTrain, "Melbourne", "Williamstown", 0)
		if a == b {
			t.Error("stops on different lines share an id")
		}
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		svc := newTestStopService(t)

		_, err := svc.CreateStop(context.Background(), CreateStopRequest{
			Name: "Somewhere", Type: "monorail",
			City: "Melbourne", Line: "Alamein", DistanceFromCity: 1,
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects a negative distance", func(t *testing.T) {
		svc := newTestStopService(t)

		_, err := svc.CreateStop(context.Background(), CreateStopRequest{
			Name: "Somewhere", Type: models.StopTypeTrain,
			City: "Melbourne", Line: "Alamein", DistanceFromCity: -1,
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestStopService_ListStops(t *testing.T) {
	svc := newTestStopService(t)
	mustCreateStop(t, svc, "Flinders Street", models.StopTypeTrain, "Melbourne", "Alamein", 0)
	mustCreateStop(t, svc, "Richmond", models.StopTypeTrain, "Melbourne", "Alamein", 2.8)
	mustCreateStop(t, svc, "Perth", models.StopTypeTrain, "Perth", "Fremantle", 0)
	mustCreateStop(t, svc, "Federation Square", models.StopTypeTram, "Melbourne", "109", 0.3)

	t.Run("no filter returns everything", func(t *testing.T) {
		stops, err := svc.ListStops(context.Background(), models.StopFilter{})
		if err != nil {
			t.Fatalf("ListStops() error = %v", err)
		}
		if len(stops) != 4 {
			t.Errorf("count = %d, want 4", len(stops))
		}
	})

	t.Run("filter fields are conjunctive", func(t *testing.T) {
		typ := models.StopTypeTrain
		city := "Melbourne"
		stops, err := svc.ListStops(context.Background(), models.StopFilter{Type: &typ, City: &city})
		if err != nil {
			t.Fatalf("ListStops() error = %v", err)
		}
		if len(stops) != 2 {
			t.Errorf("count = %d, want 2", len(stops))
		}
		for _, s := range stops {
			if s.Type != typ || s.City != city {
				t.Errorf("stop %s does not match filter", s.Name)
			}
		}
	})
}

func TestStopService_GetStop(t *testing.T) {
	svc := newTestStopService(t)
	id := mustCreateStop(t, svc, "Burnley", models.StopTypeTrain, "Melbourne", "Alamein", 4.8)

	t.Run("returns the stop", func(t *testing.T) {
		stop, err := svc.GetStop(context.Background(), id)
		if err != nil {
			t.Fatalf("GetStop() error = %v", err)
		}
		if stop == nil || stop.Name != "Burnley" {
			t.Errorf("GetStop() = %+v, want Burnley", stop)
		}
	})

	t.Run("missing id yields nil, not an error", func(t *testing.T) {
		stop, err := svc.GetStop(context.Background(), "no-such-id")
		if err != nil {
			t.Fatalf("GetStop() error = %v", err)
		}
		if stop != nil {
			t.Errorf("GetStop() = %+v, want nil", stop)
		}
	})
}

func TestStopService_SearchStops(t *testing.T) {
	svc := newTestStopService(t)
	mustCreateStop(t, svc, "Flinders Street", models.StopTypeTrain, "Melbourne", "Alamein", 0)
	mustCreateStop(t, svc, "Richmond", models.StopTypeTrain, "Melbourne", "Alamein", 2.8)

	t.Run("matching is case-insensitive", func(t *testing.T) {
		lower, err := svc.SearchStops(context.Background(), "flinders")
		if err != nil {
			t.Fatalf("SearchStops() error = %v", err)
		}
		upper, err := svc.SearchStops(context.Background(), "FLINDERS")
		if err != nil {
			t.Fatalf("SearchStops() error = %v", err)
		}
		if len(lower) != 1 || len(upper) != 1 {
			t.Fatalf("counts = %d, %d, want 1, 1", len(lower), len(upper))
		}
		if lower[0].ID != upper[0].ID {
			t.Error("case variants returned different stops")
		}
	})

	t.Run("empty term matches everything", func(t *testing.T) {
		stops, err := svc.SearchStops(context.Background(), "")
		if err != nil {
			t.Fatalf("SearchStops() error = %v", err)
		}
		if len(stops) != 2 {
			t.Errorf("count = %d, want 2", len(stops))
		}
	})

	t.Run("no match is empty, not an error", func(t *testing.T) {
		stops, err := svc.SearchStops(context.Background(), "zzz")
		if err != nil {
			t.Fatalf("SearchStops() error = %v", err)
		}
		if len(stops) != 0 {
			t.Errorf("count = %d, want 0", len(stops))
		}
	})

	t.Run("pattern characters match literally, not as wildcards", func(t *testing.T) {
		for _, term := range []string{"%", "_", `\`, "F_inders", "Fl%St"} {
			stops, err := svc.SearchStops(context.Background(), term)
			if err != nil {
				t.Fatalf("SearchStops(%q) error = %v", term, err)
			}
			if len(stops) != 0 {
				t.Errorf("SearchStops(%q) count = %d, want 0", term, len(stops))
			}
		}
	})
}

func TestStopService_GetNearbyStops(t *testing.T) {
	svc := newTestStopService(t)
	flinders := mustCreateStop(t, svc, "Flinders Street", models.StopTypeTrain, "Melbourne", "Alamein", 0)
	richmond := mustCreateStop(t, svc, "Richmond", models.StopTypeTrain, "Melbourne", "Alamein", 2.8)
	burnley := mustCreateStop(t, svc, "Burnley", models.StopTypeTrain, "Melbourne", "Alamein", 4.8)
	mustCreateStop(t, svc, "Southern Cross", models.StopTypeTrain, "Melbourne", "Williamstown", 0.8)
	mustCreateStop(t, svc, "Fremantle", models.StopTypeTrain, "Perth", "Fremantle", 19.4)

	t.Run("excludes the reference stop and scopes to city and line", func(t *testing.T) {
		nearby, err := svc.GetNearbyStops(context.Background(), flinders, nil)
		if err != nil {
			t.Fatalf("GetNearbyStops() error = %v", err)
		}
		if len(nearby) != 2 {
			t.Fatalf("count = %d, want 2", len(nearby))
		}
		for _, s := range nearby {
			if s.ID == flinders {
				t.Error("result contains the reference stop")
			}
			if s.City != "Melbourne" || s.Line != "Alamein" {
				t.Errorf("result %s is outside the reference city/line", s.Name)
			}
		}
	})

	t.Run("distance filter keeps a subset", func(t *testing.T) {
		near := 3.0
		far := 5.0

		within3, err := svc.GetNearbyStops(context.Background(), flinders, &near)
		if err != nil {
			t.Fatalf("GetNearbyStops() error = %v", err)
		}
		within5, err := svc.GetNearbyStops(context.Background(), flinders, &far)
		if err != nil {
			t.Fatalf("GetNearbyStops() error = %v", err)
		}

		if len(within3) != 1 || within3[0].ID != richmond {
			t.Errorf("within 3km = %v, want exactly Richmond", stopIDs(within3))
		}
		if len(within5) != 2 {
			t.Errorf("within 5km count = %d, want 2", len(within5))
		}
		// Tighter radius results must be a subset of wider ones.
		for _, s := range within3 {
			if !containsStop(within5, s.ID) {
				t.Errorf("stop %s within 3km missing from 5km result", s.Name)
			}
		}
		if !containsStop(within5, burnley) {
			t.Error("Burnley missing from 5km result")
		}
	})

	t.Run("tight radius yields empty", func(t *testing.T) {
		tight := 1.0
		nearby, err := svc.GetNearbyStops(context.Background(), flinders, &tight)
		if err != nil {
			t.Fatalf("GetNearbyStops() error = %v", err)
		}
		if len(nearby) != 0 {
			t.Errorf("count = %d, want 0", len(nearby))
		}
	})

	t.Run("missing reference yields empty, not an error", func(t *testing.T) {
		nearby, err := svc.GetNearbyStops(context.Background(), "no-such-id", nil)
		if err != nil {
			t.Fatalf("GetNearbyStops() error = %v", err)
		}
		if len(nearby) != 0 {
			t.Errorf("count = %d, want 0", len(nearby))
		}
	})
}

func TestStopService_ClearAllStops(t *testing.T) {
	svc := newTestStopService(t)
	mustCreateStop(t, svc, "Flinders Street", models.StopTypeTrain, "Melbourne", "Alamein", 0)
	mustCreateStop(t, svc, "Richmond", models.StopTypeTrain, "Melbourne", "Alamein", 2.8)

	result, err := svc.ClearAllStops(context.Background())
	if err != nil {
		t.Fatalf("ClearAllStops() error = %v", err)
	}
	if result.Deleted != 2 {
		t.Errorf("Deleted = %d, want 2", result.Deleted)
	}

	stops, err := svc.ListStops(context.Background(), models.StopFilter{})
	if err != nil {
		t.Fatalf("ListStops() error = %v", err)
	}
	if len(stops) != 0 {
		t.Errorf("count after clear = %d, want 0", len(stops))
	}

	// A cleared triple must be insertable again.
	again, err := svc.CreateStop(context.Background(), CreateStopRequest{
		Name: "Flinders Street", Type: models.StopTypeTrain,
		City: "Melbourne", Line: "Alamein", DistanceFromCity: 0,
	})
	if err != nil {
		t.Fatalf("CreateStop() after clear error = %v", err)
	}
	if !again.Created {
		t.Error("Created = false after clear, want true")
	}
}

func stopIDs(stops []*models.Stop) []string {
	ids := make([]string, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ID)
	}
	return ids
}

func containsStop(stops []*models.Stop, id string) bool {
	for _, s := range stops {
		if s.ID == id {
			return true
		}
	}
	return false
}
