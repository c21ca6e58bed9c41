package models

import "testing"

func TestPriceTier_LessOrEqual(t *testing.T) {
	tests := []struct {
		a, b PriceTier
		want bool
	}{
		{PriceCheap, PriceCheap, true},
		{PriceCheap, PriceUpmarket, true},
		{PriceModerate, PriceUpmarket, true},
		{PriceUpmarket, PriceModerate, false},
		{PriceModerate, PriceCheap, false},
	}
	for _, tt := range tests {
		if got := tt.a.LessOrEqual(tt.b); got != tt.want {
			t.Errorf("%s.LessOrEqual(%s) = %t, want %t", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	if !StopTypeTrain.Valid() || !StopTypeTram.Valid() {
		t.Error("known stop types reported invalid")
	}
	if StopType("monorail").Valid() {
		t.Error("unknown stop type reported valid")
	}
	if PriceTier("$$$$").Valid() {
		t.Error("unknown price tier reported valid")
	}
	if !ActivityProgramming.Valid() || WorkActivity("napping").Valid() {
		t.Error("work activity validity is wrong")
	}
	if !AmenityWifi.Valid() || Amenity("parking").Valid() {
		t.Error("amenity validity is wrong")
	}
}

func TestStopFilter_Matches(t *testing.T) {
	stop := &Stop{
		Name: "Richmond",
		Type: StopTypeTrain,
		City: "Melbourne",
		Line: "Alamein",
	}

	if !(StopFilter{}).Matches(stop) {
		t.Error("empty filter rejected a stop")
	}

	train := StopTypeTrain
	tram := StopTypeTram
	melbourne := "Melbourne"
	belgrave := "Belgrave"

	if !(StopFilter{Type: &train, City: &melbourne}).Matches(stop) {
		t.Error("matching conjunction rejected")
	}
	if (StopFilter{Type: &tram}).Matches(stop) {
		t.Error("type mismatch accepted")
	}
	if (StopFilter{Type: &train, Line: &belgrave}).Matches(stop) {
		t.Error("one failing clause should reject the stop")
	}
}

func TestCafeFilter_Matches(t *testing.T) {
	cafe := &Cafe{
		Name:      "Patricia",
		Location:  CafeLocation{Type: StopTypeTrain, StopID: "stop-1"},
		Price:     PriceModerate,
		IdealWork: []WorkActivity{ActivityReading, ActivityProgramming},
		Amenities: []Amenity{AmenityWifi, AmenityPower},
	}

	if !(CafeFilter{}).Matches(cafe) {
		t.Error("empty filter rejected a cafe")
	}

	stop1 := "stop-1"
	stop2 := "stop-2"
	cheap := PriceCheap
	upmarket := PriceUpmarket

	if !(CafeFilter{StopID: &stop1}).Matches(cafe) {
		t.Error("matching stop rejected")
	}
	if (CafeFilter{StopID: &stop2}).Matches(cafe) {
		t.Error("other stop accepted")
	}
	if (CafeFilter{PriceAtMost: &cheap}).Matches(cafe) {
		t.Error("$$ cafe passed an at-most-$ filter")
	}
	if !(CafeFilter{PriceAtMost: &upmarket}).Matches(cafe) {
		t.Error("$$ cafe failed an at-most-$$$ filter")
	}

	// Required amenities must all be present; ideal work only needs overlap.
	if !(CafeFilter{RequiredAmenities: []Amenity{AmenityWifi, AmenityPower}}).Matches(cafe) {
		t.Error("cafe with all required amenities rejected")
	}
	if (CafeFilter{RequiredAmenities: []Amenity{AmenityWifi, AmenityDesk}}).Matches(cafe) {
		t.Error("cafe missing one required amenity accepted")
	}
	if !(CafeFilter{IdealWork: []WorkActivity{ActivitySketching, ActivityReading}}).Matches(cafe) {
		t.Error("overlapping ideal work rejected")
	}
	if (CafeFilter{IdealWork: []WorkActivity{ActivitySketching}}).Matches(cafe) {
		t.Error("non-overlapping ideal work accepted")
	}
}
