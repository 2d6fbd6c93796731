package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	saoPaulo = Point{Lat: -23.5505, Lng: -46.6333}
	campinas = Point{Lat: -22.9099, Lng: -47.0626}
)

func TestDistance_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(saoPaulo, saoPaulo))
}

func TestDistance_Symmetric(t *testing.T) {
	assert.InDelta(t, Distance(saoPaulo, campinas), Distance(campinas, saoPaulo), 1e-9)
}

func TestDistance_KnownPair(t *testing.T) {
	// São Paulo to Campinas is roughly 83 km in a straight line.
	d := Distance(saoPaulo, campinas)
	assert.InDelta(t, 83.0, d, 3.0)
}

func TestFormatKm(t *testing.T) {
	assert.Equal(t, "12.3", FormatKm(12.3456))
	assert.Equal(t, "0.0", FormatKm(0))
}

func TestInRange_InclusiveBoundary(t *testing.T) {
	event := Point{Lat: 0, Lng: 0}
	east := Point{Lat: 0, Lng: 0.1}
	exact := Distance(event, east)

	matches := InRange(event, "", []Candidate{
		{ID: "at-boundary", Point: &east, RadiusKm: exact},
	})
	if assert.Len(t, matches, 1) {
		assert.Equal(t, "at-boundary", matches[0].ID)
	}

	// One unit past the boundary is excluded.
	matches = InRange(event, "", []Candidate{
		{ID: "past-boundary", Point: &east, RadiusKm: exact - 1},
	})
	assert.Empty(t, matches)
}

func TestInRange_SkipsAuthorAndMissingCoordinates(t *testing.T) {
	event := Point{Lat: 0, Lng: 0}
	near := Point{Lat: 0.01, Lng: 0.01}

	matches := InRange(event, "author", []Candidate{
		{ID: "author", Point: &near, RadiusKm: 100},
		{ID: "no-location", Point: nil, RadiusKm: 100},
		{ID: "subscriber", Point: &near, RadiusKm: 100},
	})

	if assert.Len(t, matches, 1) {
		assert.Equal(t, "subscriber", matches[0].ID)
		assert.Greater(t, matches[0].DistanceKm, 0.0)
	}
}
