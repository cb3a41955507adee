package tripindex

import (
	"github.com/gostonefire/tripindex/aggregate"
	"github.com/gostonefire/tripindex/filter"
	"github.com/gostonefire/tripindex/internal/task"
)

// Task - Handle to an operation running in the background, see Go
type Task[T any] = task.Task[T]

// Go - Runs fn in the background. The caller receives exactly one result through Wait, and can select
// on Done to learn when it is ready without blocking.
func Go[T any](fn func() (T, error)) *Task[T] {
	return task.Run(fn)
}

// BuildIndexAsync - BuildIndex in the background
func BuildIndexAsync(sourcePath, indexDir string, opts ...Option) *Task[int64] {
	return Go(func() (int64, error) { return BuildIndex(sourcePath, indexDir, opts...) })
}

// FilterToFileAsync - FilterToFile in the background
func FilterToFileAsync(source, dest string, expr filter.Expr, maxResults int, opts ...Option) *Task[int] {
	return Go(func() (int, error) { return FilterToFile(source, dest, expr, maxResults, opts...) })
}

// GetFilterStatsAsync - GetFilterStats in the background
func GetFilterStatsAsync(source string, expr filter.Expr, opts ...Option) *Task[aggregate.Metrics] {
	return Go(func() (aggregate.Metrics, error) { return GetFilterStats(source, expr, opts...) })
}

// GetPopularDestinationsAsync - GetPopularDestinations in the background
func GetPopularDestinationsAsync(source string, limit int, expr filter.Expr, opts ...Option) *Task[[]aggregate.Destination] {
	return Go(func() ([]aggregate.Destination, error) { return GetPopularDestinations(source, limit, expr, opts...) })
}
