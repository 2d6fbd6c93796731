package geo

// Candidate is one proximity subscriber considered for a new event.
type Candidate struct {
	ID       string
	Point    *Point // nil when the subscriber has no coordinate
	RadiusKm float64
}

// Match is a subscriber whose configured radius covers the event coordinate.
type Match struct {
	ID         string
	DistanceKm float64
}

// InRange returns the candidates within their own radius of the event
// coordinate. Candidates without a coordinate and the excluded id (the
// event's author) are skipped. The radius boundary is inclusive.
func InRange(event Point, excludeID string, candidates []Candidate) []Match {
	var matches []Match
	for _, c := range candidates {
		if c.Point == nil || c.ID == excludeID {
			continue
		}
		d := Distance(event, *c.Point)
		if d <= c.RadiusKm {
			matches = append(matches, Match{ID: c.ID, DistanceKm: d})
		}
	}
	return matches
}
