package aggregate

import (
	"fmt"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/axiomhq/hyperloglog"

	"github.com/gostonefire/tripindex/filter"
	"github.com/gostonefire/tripindex/model"
	"github.com/gostonefire/tripindex/reader"
)

// sketchAccuracy - Relative accuracy of the total amount quantile sketch
const sketchAccuracy = 0.01

// Metrics - Summary statistics over the trips matching a filter.
// Every field except Count is nil when no trip matched.
type Metrics struct {
	Count                int64    `json:"count"`
	TotalAmount          *float64 `json:"total_amount,omitempty"`
	AvgAmount            *float64 `json:"avg_amount,omitempty"`
	AvgDistance          *float64 `json:"avg_distance,omitempty"`
	AvgPassengers        *float64 `json:"avg_passengers,omitempty"`
	AmountP50            *float64 `json:"amount_p50,omitempty"`
	AmountP90            *float64 `json:"amount_p90,omitempty"`
	DistinctDestinations *uint64  `json:"distinct_destinations,omitempty"`
}

// accumulator - Running state for GetFilterStats, memory use is independent of the number of trips
type accumulator struct {
	count        int64
	sumDistance  float64
	sumAmount    float64
	sumPassenger float64
	amounts      *ddsketch.DDSketch
	destinations *hyperloglog.Sketch
}

func newAccumulator() (acc *accumulator, err error) {
	sketch, err := ddsketch.NewDefaultDDSketch(sketchAccuracy)
	if err != nil {
		err = fmt.Errorf("error while creating quantile sketch: %w", err)
		return
	}

	acc = &accumulator{amounts: sketch, destinations: hyperloglog.New14()}

	return
}

func (A *accumulator) add(trip model.Trip) {
	A.count++
	A.sumDistance += trip.TripDistance
	A.sumAmount += trip.TotalAmount
	A.sumPassenger += float64(trip.PassengerCount)
	A.destinations.Insert([]byte(trip.DOLocationID))
	// Amounts beyond the sketch range only leave the quantiles, never fail the scan
	_ = A.amounts.Add(trip.TotalAmount)
}

func (A *accumulator) metrics() (m Metrics) {
	m.Count = A.count
	if A.count == 0 {
		return
	}

	n := float64(A.count)
	total := A.sumAmount
	avgAmount := A.sumAmount / n
	avgDistance := A.sumDistance / n
	avgPassengers := A.sumPassenger / n
	distinct := A.destinations.Estimate()

	m.TotalAmount = &total
	m.AvgAmount = &avgAmount
	m.AvgDistance = &avgDistance
	m.AvgPassengers = &avgPassengers
	m.DistinctDestinations = &distinct
	if p50, err := A.amounts.GetValueAtQuantile(0.5); err == nil {
		m.AmountP50 = &p50
	}
	if p90, err := A.amounts.GetValueAtQuantile(0.9); err == nil {
		m.AmountP90 = &p90
	}

	return
}

// GetFilterStats - Computes count, sums and averages over the trips in source matching expr in one pass.
//   - source is the CSV dataset to read
//   - expr is the filter, nil matches everything
//
// It returns:
//   - metrics holds Count and, when Count > 0, the derived values
//   - err is an I/O error
func GetFilterStats(source string, expr filter.Expr, opts ...reader.Option) (metrics Metrics, err error) {
	acc, err := newAccumulator()
	if err != nil {
		return
	}

	_, err = reader.Scan(source, func(trip model.Trip) (reader.Verdict, error) {
		if !filter.Matches(expr, trip) {
			return reader.Continue, nil
		}
		acc.add(trip)
		return reader.Continue, nil
	}, opts...)
	if err != nil {
		return
	}

	metrics = acc.metrics()

	return
}
