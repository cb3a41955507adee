// Package aggregate composes the streaming reader with filters to produce filtered files,
// summary statistics and destination rankings in a single pass over the source.
package aggregate

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/gostonefire/tripindex/filter"
	"github.com/gostonefire/tripindex/internal/utils"
	"github.com/gostonefire/tripindex/model"
	"github.com/gostonefire/tripindex/reader"
)

// writeBufferSize - Size of the buffer in front of the output file
const writeBufferSize = 64 * 1024

// FilterToFile - Streams source and writes every trip matching expr to dest, preceded by one header row.
// Missing parent directories of dest are created. When maxResults is above zero the scan stops as soon
// as that many rows have been written, which counts as a successful completion.
// The output is flushed and closed on every exit path, any flush or close failure is joined with
// the scan error.
//   - source is the CSV dataset to read
//   - dest is the file to create (or truncate)
//   - expr is the filter, nil matches everything
//   - maxResults caps the number of rows written, zero or less means no cap
//
// It returns:
//   - written is the number of data rows written to dest
//   - err is an I/O error from either side
func FilterToFile(source, dest string, expr filter.Expr, maxResults int, opts ...reader.Option) (written int, err error) {
	if err = utils.EnsureParentDir(dest); err != nil {
		err = fmt.Errorf("error while creating output directory: %w", err)
		return
	}

	file, err := os.Create(dest)
	if err != nil {
		err = fmt.Errorf("error while creating output file: %w", err)
		return
	}

	buf := bufio.NewWriterSize(file, writeBufferSize)
	out := csv.NewWriter(buf)

	defer func() {
		var closing *multierror.Error
		out.Flush()
		if e := out.Error(); e != nil {
			closing = multierror.Append(closing, fmt.Errorf("error while writing output file: %w", e))
		}
		if e := buf.Flush(); e != nil {
			closing = multierror.Append(closing, fmt.Errorf("error while flushing output file: %w", e))
		}
		if e := file.Close(); e != nil {
			closing = multierror.Append(closing, fmt.Errorf("error while closing output file: %w", e))
		}
		if closing == nil {
			return
		}
		if err == nil && len(closing.Errors) == 1 {
			err = closing.Errors[0]
			return
		}
		err = multierror.Append(err, closing.Errors...)
	}()

	if err = out.Write(model.Header()); err != nil {
		err = fmt.Errorf("error while writing header: %w", err)
		return
	}

	_, err = reader.Scan(source, func(trip model.Trip) (reader.Verdict, error) {
		if !filter.Matches(expr, trip) {
			return reader.Continue, nil
		}
		if e := out.Write(trip.ToRow()); e != nil {
			return reader.Stop, fmt.Errorf("error while writing row: %w", e)
		}
		written++
		if maxResults > 0 && written >= maxResults {
			return reader.Stop, nil
		}
		return reader.Continue, nil
	}, opts...)

	return
}
