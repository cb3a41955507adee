package aggregate

import (
	"slices"

	"github.com/gostonefire/tripindex/filter"
	"github.com/gostonefire/tripindex/model"
	"github.com/gostonefire/tripindex/reader"
)

// Destination - One entry of the destination ranking
type Destination struct {
	ID    string `json:"id"`
	Count int64  `json:"count"`
}

// GetPopularDestinations - Counts trips per drop-off location in one pass and ranks them by
// descending count. Destinations with equal counts keep the order in which they were first seen.
//   - source is the CSV dataset to read
//   - limit is the max number of entries returned, zero or less returns all
//   - expr restricts the trips counted, nil counts every trip
//
// It returns:
//   - ranking is the ordered list of destinations
//   - err is an I/O error
func GetPopularDestinations(source string, limit int, expr filter.Expr, opts ...reader.Option) (ranking []Destination, err error) {
	positions := make(map[string]int)
	var counts []Destination

	_, err = reader.Scan(source, func(trip model.Trip) (reader.Verdict, error) {
		if !filter.Matches(expr, trip) {
			return reader.Continue, nil
		}
		pos, ok := positions[trip.DOLocationID]
		if !ok {
			pos = len(counts)
			positions[trip.DOLocationID] = pos
			counts = append(counts, Destination{ID: trip.DOLocationID})
		}
		counts[pos].Count++
		return reader.Continue, nil
	}, opts...)
	if err != nil {
		return
	}

	// Stable sort keeps first-seen order among equal counts
	slices.SortStableFunc(counts, func(a, b Destination) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		}
		return 0
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	ranking = counts

	return
}
