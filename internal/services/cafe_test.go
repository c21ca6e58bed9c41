package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/repository"
)

type cafeFixture struct {
	stops *StopService
	cafes *CafeService
}

func newCafeFixture(t *testing.T) *cafeFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	return &cafeFixture{
		stops: NewStopService(store.Stops, nil),
		cafes: NewCafeService(store.Cafes, store.Stops, nil),
	}
}

func mustCreateCafe(t *testing.T, f *cafeFixture, name, stopID string, typ models.StopType, price models.PriceTier, amenities []models.Amenity, idealWork []models.WorkActivity) *models.Cafe {
	t.Helper()
	cafe, err := f.cafes.CreateCafe(context.Background(), "device-1", CreateCafeRequest{
		Name:      name,
		Location:  models.CafeLocation{Type: typ, StopID: stopID},
		Price:     price,
		Amenities: amenities,
		IdealWork: idealWork,
	})
	if err != nil {
		t.Fatalf("CreateCafe(%s) error = %v", name, err)
	}
	return cafe
}

func TestCafeService_CreateCafe(t *testing.T) {
	t.Run("creates a cafe at a matching stop", func(t *testing.T) {
		f := newCafeFixture(t)
		stopID := mustCreateStop(t, f.stops, "Richmond", models.StopTypeTrain, "Melbourne", "Alamein", 2.8)

		cafe, err := f.cafes.CreateCafe(context.Background(), "device-1", CreateCafeRequest{
			Name:      "Common Grounds",
			Location:  models.CafeLocation{Type: models.StopTypeTrain, StopID: stopID},
			BestHours: []models.TimeWindow{{From: "07:00", To: "09:30"}},
			Food:      []string{"banh mi", "pastries"},
			Price:     models.PriceModerate,
			IdealWork: []models.WorkActivity{models.ActivityProgramming},
			Amenities: []models.Amenity{models.AmenityWifi, models.AmenityPower},
			OpeningHours: models.OpeningHours{
				Mon: "7-5", Tue: "7-5", Wed: "7-5", Thu: "7-5", Fri: "7-5", Sat: "8-3", Sun: "closed",
			},
		})
		if err != nil {
			t.Fatalf("CreateCafe() error = %v", err)
		}
		if cafe.ID == "" {
			t.Error("ID is empty")
		}
		if cafe.CreatedBy != "device-1" {
			t.Errorf("CreatedBy = %v, want device-1", cafe.CreatedBy)
		}
		if cafe.CreatedAt.IsZero() {
			t.Error("CreatedAt is zero")
		}
	})

	t.Run("rejects a location type disagreeing with the stop", func(t *testing.T) {
		f := newCafeFixture(t)
		stopID := mustCreateStop(t, f.stops, "Richmond", models.StopTypeTrain, "Melbourne", "Alamein", 2.8)

		_, err := f.cafes.CreateCafe(context.Background(), "device-1", CreateCafeRequest{
			Name:     "Wrong Mode",
			Location: models.CafeLocation{Type: models.StopTypeTram, StopID: stopID},
			Price:    models.PriceCheap,
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}

		// The failed create must not insert a record.
		cafes, err := f.cafes.ListCafes(context.Background(), models.CafeFilter{})
		if err != nil {
			t.Fatalf("ListCafes() error = %v", err)
		}
		if len(cafes) != 0 {
			t.Errorf("count = %d, want 0", len(cafes))
		}
	})

	t.Run("rejects an unresolvable stop", func(t *testing.T) {
		f := newCafeFixture(t)

		_, err := f.cafes.CreateCafe(context.Background(), "device-1", CreateCafeRequest{
			Name:     "Nowhere",
			Location: models.CafeLocation{Type: models.StopTypeTrain, StopID: "no-such-stop"},
			Price:    models.PriceCheap,
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects an unknown price tier", func(t *testing.T) {
		f := newCafeFixture(t)
		stopID := mustCreateStop(t, f.stops, "Richmond", models.StopTypeTrain, "Melbourne", "Alamein", 2.8)

		_, err := f.cafes.CreateCafe(context.Background(), "device-1", CreateCafeRequest{
			Name:     "Pricey",
			Location: models.CafeLocation{Type: models.StopTypeTrain, StopID: stopID},
			Price:    "$$$$",
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestCafeService_ListCafes(t *testing.T) {
	f := newCafeFixture(t)
	richmond := mustCreateStop(t, f.stops, "Richmond", models.StopTypeTrain, "Melbourne", "Alamein", 2.8)
	burnley := mustCreateStop(t, f.stops, "Burnley", models.StopTypeTrain, "Melbourne", "Alamein", 4.8)

	cheap := mustCreateCafe(t, f, "Cheap Eats", richmond, models.StopTypeTrain, models.PriceCheap,
		[]models.Amenity{models.AmenityWifi}, []models.WorkActivity{models.ActivityReading})
	wired := mustCreateCafe(t, f, "Wired", richmond, models.StopTypeTrain, models.PriceModerate,
		[]models.Amenity{models.AmenityWifi, models.AmenityPower, models.AmenityDesk},
		[]models.WorkActivity{models.ActivityProgramming, models.ActivityWork})
	fancy := mustCreateCafe(t, f, "Fancy", burnley, models.StopTypeTrain, models.PriceUpmarket,
		[]models.Amenity{models.AmenityBathroom}, []models.WorkActivity{models.ActivitySketching})

	t.Run("no filter returns everything", func(t *testing.T) {
		cafes, err := f.cafes.ListCafes(context.Background(), models.CafeFilter{})
		if err != nil {
			t.Fatalf("ListCafes() error = %v", err)
		}
		if len(cafes) != 3 {
			t.Errorf("count = %d, want 3", len(cafes))
		}
	})

	t.Run("stop filter", func(t *testing.T) {
		cafes, err := f.cafes.ListCafes(context.Background(), models.CafeFilter{StopID: &burnley})
		if err != nil {
			t.Fatalf("ListCafes() error = %v", err)
		}
		if len(cafes) != 1 || cafes[0].ID != fancy.ID {
			t.Errorf("got %d cafes, want exactly Fancy", len(cafes))
		}
	})

	t.Run("price is an at-most bound", func(t *testing.T) {
		atMost := models.PriceModerate
		cafes, err := f.cafes.ListCafes(context.Background(), models.CafeFilter{PriceAtMost: &atMost})
		if err != nil {
			t.Fatalf("ListCafes() error = %v", err)
		}
		if len(cafes) != 2 {
			t.Errorf("count = %d, want 2", len(cafes))
		}
		for _, c := range cafes {
			if c.ID == fancy.ID {
				t.Error("upmarket cafe passed an at-most $$ filter")
			}
		}
	})

	t.Run("every required amenity must be present", func(t *testing.T) {
		cafes, err := f.cafes.ListCafes(context.Background(), models.CafeFilter{
			RequiredAmenities: []models.Amenity{models.AmenityWifi, models.AmenityPower},
		})
		if err != nil {
			t.Fatalf("ListCafes() error = %v", err)
		}
		if len(cafes) != 1 || cafes[0].ID != wired.ID {
			t.Errorf("got %d cafes, want exactly Wired", len(cafes))
		}
	})

	t.Run("ideal work intersects", func(t *testing.T) {
		cafes, err := f.cafes.ListCafes(context.Background(), models.CafeFilter{
			IdealWork: []models.WorkActivity{models.ActivityReading, models.ActivitySketching},
		})
		if err != nil {
			t.Fatalf("ListCafes() error = %v", err)
		}
		if len(cafes) != 2 {
			t.Errorf("count = %d, want 2", len(cafes))
		}
	})

	t.Run("clauses are ANDed", func(t *testing.T) {
		atMost := models.PriceCheap
		cafes, err := f.cafes.ListCafes(context.Background(), models.CafeFilter{
			StopID:            &richmond,
			PriceAtMost:       &atMost,
			RequiredAmenities: []models.Amenity{models.AmenityWifi},
		})
		if err != nil {
			t.Fatalf("ListCafes() error = %v", err)
		}
		if len(cafes) != 1 || cafes[0].ID != cheap.ID {
			t.Errorf("got %d cafes, want exactly Cheap Eats", len(cafes))
		}
	})
}

func TestCafeService_GetCafe(t *testing.T) {
	f := newCafeFixture(t)

	cafe, err := f.cafes.GetCafe(context.Background(), "no-such-cafe")
	if err != nil {
		t.Fatalf("GetCafe() error = %v", err)
	}
	if cafe != nil {
		t.Errorf("GetCafe() = %+v, want nil", cafe)
	}
}
