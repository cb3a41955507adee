// Package reader streams trip records out of a CSV file without loading it into memory.
package reader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gostonefire/tripindex/model"
)

// DefaultBufferSize - Size of the read buffer between the file and the row parser
const DefaultBufferSize = 64 * 1024

// Verdict - What a Consumer wants the scan to do after a record
type Verdict int

const (
	// Continue - Keep scanning
	Continue Verdict = iota
	// Stop - End the scan early, this is a normal completion and not an error
	Stop
)

// Consumer - Receives every well-formed record in file order.
// Returning a non-nil error aborts the scan and the error is handed back to the caller of Scan.
type Consumer func(trip model.Trip) (Verdict, error)

// Summary - Counters collected during one scan
//   - RowsRead is the number of data rows read after the header
//   - RowsDelivered is the number of records handed to the consumer
//   - RowsSkipped is the number of malformed rows that were dropped
//   - FieldsDefaulted is the number of numeric fields that were replaced by zero
//   - Stopped is true if the consumer ended the scan with Stop
type Summary struct {
	RowsRead        int64
	RowsDelivered   int64
	RowsSkipped     int64
	FieldsDefaulted int64
	Stopped         bool
}

type options struct {
	bufferSize int
	logger     *slog.Logger
}

// Option - Functional option for Scan
type Option func(*options)

// WithBufferSize - Sets the size of the read buffer, values below 4096 are raised to 4096
func WithBufferSize(size int) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// WithLogger - Sets the logger that receives anomaly diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Scan - Opens the file at path, discards the header line and hands every parsed record to consumer.
// Rows with fewer fields than the schema requires are skipped, unparsable numeric fields are zeroed.
// The scan runs until end of file, until the consumer returns Stop, or until an error.
//   - path is the CSV file to read
//   - consumer is called once per record in file order
//   - opts are optional settings
//
// It returns:
//   - summary holds counters for the scan, valid also when err is not nil
//   - err is an I/O error or the error returned by the consumer
func Scan(path string, consumer Consumer, opts ...Option) (summary Summary, err error) {
	o := options{bufferSize: DefaultBufferSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bufferSize < 4096 {
		o.bufferSize = 4096
	}

	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("error while opening source file: %w", err)
		return
	}
	defer func(file *os.File) { _ = file.Close() }(file)

	buf := bufio.NewReaderSize(file, o.bufferSize)

	// The first line is a header and is discarded whatever it contains
	if _, err = buf.ReadSlice('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			err = fmt.Errorf("error while reading header: %w", err)
			return
		}
		// Header longer than the buffer, drain the rest of it
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = buf.ReadSlice('\n')
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
				return
			}
			err = fmt.Errorf("error while reading header: %w", err)
			return
		}
	}

	rows := csv.NewReader(buf)
	rows.FieldsPerRecord = -1
	rows.LazyQuotes = true
	rows.ReuseRecord = true

	defer func() {
		if summary.RowsSkipped > 0 || summary.FieldsDefaulted > 0 {
			o.logger.Debug("scan finished with anomalies",
				slog.String("path", path),
				slog.Int64("rowsRead", summary.RowsRead),
				slog.Int64("rowsSkipped", summary.RowsSkipped),
				slog.Int64("fieldsDefaulted", summary.FieldsDefaulted))
		}
	}()

	var row []string
	var verdict Verdict
	for {
		row, err = rows.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
				return
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				summary.RowsRead++
				summary.RowsSkipped++
				o.logger.Debug("skipping malformed row", slog.Int("line", parseErr.Line), slog.Any("error", parseErr.Err))
				continue
			}
			err = fmt.Errorf("error while reading source file: %w", err)
			return
		}

		summary.RowsRead++
		if len(row) < model.NumberOfColumns {
			summary.RowsSkipped++
			continue
		}

		trip, defaulted := model.FromRow(row)
		summary.FieldsDefaulted += int64(defaulted)
		summary.RowsDelivered++

		verdict, err = consumer(trip)
		if err != nil {
			return
		}
		if verdict == Stop {
			summary.Stopped = true
			return
		}
	}
}
