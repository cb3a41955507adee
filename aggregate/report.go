package aggregate

import (
	"golang.org/x/sync/errgroup"

	"github.com/gostonefire/tripindex/filter"
	"github.com/gostonefire/tripindex/reader"
)

// ReportResult - Statistics and destination ranking over the same filter
type ReportResult struct {
	Metrics      Metrics       `json:"metrics"`
	Destinations []Destination `json:"destinations"`
}

// Report - Runs GetFilterStats and GetPopularDestinations as two independent scans in parallel.
// Each scan has its own reader and buffer, the filter is shared since expressions are stateless.
func Report(source string, expr filter.Expr, limit int, opts ...reader.Option) (result ReportResult, err error) {
	var g errgroup.Group

	g.Go(func() (e error) {
		result.Metrics, e = GetFilterStats(source, expr, opts...)
		return
	})
	g.Go(func() (e error) {
		result.Destinations, e = GetPopularDestinations(source, limit, expr, opts...)
		return
	})

	err = g.Wait()

	return
}
