// Package tripindex is the entry point to the trip engine. It exposes the five operations the
// surrounding application calls: building the on-disk index, exporting filtered records, filtered
// statistics, the destination ranking and point lookup by key.
package tripindex

import (
	"fmt"
	"log/slog"

	"github.com/gostonefire/tripindex/aggregate"
	"github.com/gostonefire/tripindex/diskhash"
	"github.com/gostonefire/tripindex/filter"
	"github.com/gostonefire/tripindex/internal/utils"
	"github.com/gostonefire/tripindex/model"
	"github.com/gostonefire/tripindex/reader"
)

// Option - Configures a call to one of the operations
type Option func(*settings)

type settings struct {
	table  diskhash.Conf
	reader []reader.Option
	logger *slog.Logger
}

// WithTableConf - Sets the disk hash table configuration used by BuildIndex and Lookup.
// The directory given to those functions overrides conf.Dir.
func WithTableConf(conf diskhash.Conf) Option {
	return func(s *settings) { s.table = conf }
}

// WithReaderOptions - Adds options for the streaming reader
func WithReaderOptions(opts ...reader.Option) Option {
	return func(s *settings) { s.reader = append(s.reader, opts...) }
}

// WithLogger - Sets the logger for both the reader and the table
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger != nil {
		s.table.Logger = s.logger
		s.reader = append([]reader.Option{reader.WithLogger(s.logger)}, s.reader...)
	}
	return s
}

// BuildIndex - Creates (or opens) the index in indexDir and inserts every record of sourcePath.
// Nothing is created when sourcePath is not a readable file.
//   - sourcePath is the CSV dataset to read
//   - indexDir is the index directory
//   - opts are optional table, reader and logger settings
//
// It returns:
//   - count is the number of records processed
//   - err is a standard error, if something went wrong
func BuildIndex(sourcePath, indexDir string, opts ...Option) (count int64, err error) {
	if !utils.FileExists(sourcePath) {
		err = fmt.Errorf("source dataset %s does not exist or is a directory", sourcePath)
		return
	}

	s := newSettings(opts)
	conf := s.table
	conf.Dir = indexDir

	count, err = diskhash.BuildFromSource(sourcePath, conf, s.reader...)

	return
}

// FilterToFile - Writes the records of source matching expr to dest, see aggregate.FilterToFile
func FilterToFile(source, dest string, expr filter.Expr, maxResults int, opts ...Option) (int, error) {
	return aggregate.FilterToFile(source, dest, expr, maxResults, newSettings(opts).reader...)
}

// GetFilterStats - Summarizes the records of source matching expr, see aggregate.GetFilterStats
func GetFilterStats(source string, expr filter.Expr, opts ...Option) (aggregate.Metrics, error) {
	return aggregate.GetFilterStats(source, expr, newSettings(opts).reader...)
}

// GetPopularDestinations - Ranks drop-off locations by trip count, see aggregate.GetPopularDestinations
func GetPopularDestinations(source string, limit int, expr filter.Expr, opts ...Option) ([]aggregate.Destination, error) {
	return aggregate.GetPopularDestinations(source, limit, expr, newSettings(opts).reader...)
}

// Lookup - Point lookup of one record in the index at indexDir.
//   - indexDir is the index directory, it must hold an index built earlier
//   - key is the record key
//
// It returns:
//   - trip is the stored record if found
//   - found is false when no record has the key
//   - err is of type diskhash.NotATable when indexDir holds no index, or a standard error
func Lookup(indexDir, key string, opts ...Option) (trip model.Trip, found bool, err error) {
	conf := newSettings(opts).table
	conf.Dir = indexDir

	table, err := diskhash.OpenExisting(conf)
	if err != nil {
		return
	}

	trip, found, err = table.Get(key)

	return
}
