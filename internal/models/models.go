package models

import "time"

// StopType distinguishes heavy rail stations from tram stops.
type StopType string

const (
	StopTypeTrain StopType = "train"
	StopTypeTram  StopType = "tram"
)

// Valid reports whether t is a known stop type.
func (t StopType) Valid() bool {
	switch t {
	case StopTypeTrain, StopTypeTram:
		return true
	}
	return false
}

// PriceTier is a cafe price bracket, totally ordered cheap to expensive.
type PriceTier string

const (
	PriceCheap    PriceTier = "$"
	PriceModerate PriceTier = "$$"
	PriceUpmarket PriceTier = "$$$"
)

// Valid reports whether p is a known price tier.
func (p PriceTier) Valid() bool {
	switch p {
	case PriceCheap, PriceModerate, PriceUpmarket:
		return true
	}
	return false
}

func (p PriceTier) rank() int {
	switch p {
	case PriceCheap:
		return 1
	case PriceModerate:
		return 2
	case PriceUpmarket:
		return 3
	}
	return 0
}

// LessOrEqual reports whether p is at most o under $ < $$ < $$$.
func (p PriceTier) LessOrEqual(o PriceTier) bool {
	return p.rank() <= o.rank()
}

// WorkActivity is an activity a cafe is suited for.
type WorkActivity string

const (
	ActivityReading     WorkActivity = "reading"
	ActivityProgramming WorkActivity = "programming"
	ActivitySketching   WorkActivity = "sketching"
	ActivityWork        WorkActivity = "work"
)

// Valid reports whether a is a known work activity.
func (a WorkActivity) Valid() bool {
	switch a {
	case ActivityReading, ActivityProgramming, ActivitySketching, ActivityWork:
		return true
	}
	return false
}

// Amenity is a facility a cafe offers.
type Amenity string

const (
	AmenityWater    Amenity = "water"
	AmenityWifi     Amenity = "wifi"
	AmenityPower    Amenity = "power"
	AmenityDesk     Amenity = "desk"
	AmenityBathroom Amenity = "bathroom"
)

// Valid reports whether a is a known amenity.
func (a Amenity) Valid() bool {
	switch a {
	case AmenityWater, AmenityWifi, AmenityPower, AmenityDesk, AmenityBathroom:
		return true
	}
	return false
}

// Coordinates is an optional lat/lng pair on a stop. No query uses it yet;
// it is carried for forward compatibility with the seed dataset.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Stop is a transit station or tram stop. At most one stop exists per
// (name, line, city) triple; DistanceFromCity is the 1-D position along the
// line used by nearby queries.
type Stop struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Type             StopType     `json:"type"`
	City             string       `json:"city"`
	Line             string       `json:"line"`
	DistanceFromCity float64      `json:"distanceFromCity"`
	Zone             *int         `json:"zone,omitempty"`
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
	Accessibility    *bool        `json:"accessibility,omitempty"`
	Code             *string      `json:"code,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// StopFilter narrows a stop listing. Nil fields are unconstrained; set
// fields are ANDed.
type StopFilter struct {
	Type *StopType
	City *string
	Line *string
}

// Matches reports whether s satisfies every set field of f.
func (f StopFilter) Matches(s *Stop) bool {
	if f.Type != nil && s.Type != *f.Type {
		return false
	}
	if f.City != nil && s.City != *f.City {
		return false
	}
	if f.Line != nil && s.Line != *f.Line {
		return false
	}
	return true
}

// CafeLocation ties a cafe to exactly one stop. Type duplicates the
// referenced stop's type and must agree with it; the catalog enforces this
// at create time.
type CafeLocation struct {
	Type   StopType `json:"type"`
	StopID string   `json:"stopId"`
}

// TimeWindow is a from/to time-of-day range ("HH:MM" display strings).
type TimeWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// OpeningHours holds one free-text hours string per weekday.
type OpeningHours struct {
	Mon string `json:"mon"`
	Tue string `json:"tue"`
	Wed string `json:"wed"`
	Thu string `json:"thu"`
	Fri string `json:"fri"`
	Sat string `json:"sat"`
	Sun string `json:"sun"`
}

// Cafe is a work-friendly cafe near a transit stop.
type Cafe struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Location     CafeLocation   `json:"location"`
	BestHours    []TimeWindow   `json:"bestHours"`
	Food         []string       `json:"food"`
	Price        PriceTier      `json:"price"`
	IdealWork    []WorkActivity `json:"idealWork"`
	Amenities    []Amenity      `json:"amenities"`
	OpeningHours OpeningHours   `json:"openingHours"`
	CreatedBy    string         `json:"createdBy"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// HasAmenity reports whether the cafe offers a.
func (c *Cafe) HasAmenity(a Amenity) bool {
	for _, have := range c.Amenities {
		if have == a {
			return true
		}
	}
	return false
}

// SuitsAny reports whether the cafe's ideal activities intersect want.
func (c *Cafe) SuitsAny(want []WorkActivity) bool {
	for _, w := range want {
		for _, have := range c.IdealWork {
			if have == w {
				return true
			}
		}
	}
	return false
}

// CafeFilter narrows a cafe listing. Nil/empty fields are unconstrained;
// active clauses are ANDed.
type CafeFilter struct {
	StopID            *string
	PriceAtMost       *PriceTier
	RequiredAmenities []Amenity
	IdealWork         []WorkActivity
}

// Matches reports whether c satisfies every active clause of f.
func (f CafeFilter) Matches(c *Cafe) bool {
	if f.StopID != nil && c.Location.StopID != *f.StopID {
		return false
	}
	if f.PriceAtMost != nil && !c.Price.LessOrEqual(*f.PriceAtMost) {
		return false
	}
	for _, a := range f.RequiredAmenities {
		if !c.HasAmenity(a) {
			return false
		}
	}
	if len(f.IdealWork) > 0 && !c.SuitsAny(f.IdealWork) {
		return false
	}
	return true
}

// UserProfile maps an opaque per-device identifier to a home stop and
// favorite cafes. HomeStopID is a pointer so "no home stop set" is omitted
// from storage and JSON rather than stored as null.
type UserProfile struct {
	UserID     string    `json:"userId"`
	HomeStopID *string   `json:"homeStopId,omitempty"`
	Favorites  []string  `json:"favorites"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Visit is one append-only visit log entry. Never mutated or deleted.
type Visit struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CafeID    string    `json:"cafeId"`
	Timestamp time.Time `json:"timestamp"`
}
