package diskhash

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gostonefire/tripindex/model"
	"github.com/gostonefire/tripindex/reader"
)

// progressInterval - Number of records between progress log lines during a build pass
const progressInterval = 100_000

// BuildFromSource - The one-time ingestion entry point. It opens (or creates) the table described by conf,
// streams the full dataset at source and inserts every record under its key.
//   - source is the CSV dataset to read
//   - conf is the table configuration, conf.BuildBatch enables batched bucket rewrites
//   - opts are passed on to the streaming reader
//
// It returns:
//   - count is the number of records processed
//   - err is a standard error, if something went wrong
func BuildFromSource(source string, conf Conf, opts ...reader.Option) (count int64, err error) {
	table, err := Open(conf)
	if err != nil {
		return
	}

	count, err = table.Load(source, opts...)

	return
}

// Load - Streams source and inserts every record into the table.
// With a build batch above one, records are buffered per bucket and each touched bucket is rewritten
// once per batch, which keeps at most the batch plus one bucket in memory.
//   - source is the CSV dataset to read
//   - opts are passed on to the streaming reader
//
// It returns:
//   - count is the number of records processed
//   - err is a standard error, if something went wrong
func (D *DiskHashTable) Load(source string, opts ...reader.Option) (count int64, err error) {
	start := time.Now()
	opts = append([]reader.Option{reader.WithLogger(D.logger)}, opts...)

	var b *batch
	if D.buildBatch > 1 {
		b = &batch{table: D, limit: D.buildBatch, pending: make(map[int64][]model.TripEntry)}
	}

	summary, err := reader.Scan(source, func(trip model.Trip) (reader.Verdict, error) {
		var e error
		if b != nil {
			e = b.add(trip.Index, trip)
		} else {
			e = D.Insert(trip.Index, trip)
		}
		if e != nil {
			return reader.Stop, e
		}

		count++
		if count%progressInterval == 0 {
			D.logger.Info("build in progress", slog.Int64("records", count), slog.Duration("elapsed", time.Since(start)))
		}
		return reader.Continue, nil
	}, opts...)
	if err != nil {
		err = fmt.Errorf("error while building table: %w", err)
		return
	}

	if b != nil {
		if err = b.flush(); err != nil {
			err = fmt.Errorf("error while building table: %w", err)
			return
		}
	}

	D.logger.Info("build finished",
		slog.String("source", source),
		slog.String("dir", D.dir),
		slog.Int64("records", count),
		slog.Int64("skippedRows", summary.RowsSkipped),
		slog.Int64("defaultedFields", summary.FieldsDefaulted),
		slog.Duration("elapsed", time.Since(start)))

	return
}

// batch - Pending inserts grouped per bucket, in arrival order within each bucket
type batch struct {
	table   *DiskHashTable
	limit   int
	size    int
	pending map[int64][]model.TripEntry
}

func (B *batch) add(key string, trip model.Trip) (err error) {
	bucketNo, err := B.table.GetBucketNo(key)
	if err != nil {
		return
	}

	B.pending[bucketNo] = append(B.pending[bucketNo], model.TripEntry{Key: key, Trip: trip})
	B.size++
	if B.size >= B.limit {
		err = B.flush()
	}

	return
}

// flush - Applies the pending entries bucket by bucket with the same replace-or-append rule as Insert
func (B *batch) flush() (err error) {
	bucketNos := make([]int64, 0, len(B.pending))
	for bucketNo := range B.pending {
		bucketNos = append(bucketNos, bucketNo)
	}
	slices.Sort(bucketNos)

	var entries []model.TripEntry
	for _, bucketNo := range bucketNos {
		entries, err = B.table.getBucket(bucketNo)
		if err != nil {
			return
		}

		positions := make(map[string]int, len(entries))
		for i, e := range entries {
			positions[e.Key] = i
		}
		for _, e := range B.pending[bucketNo] {
			if i, ok := positions[e.Key]; ok {
				entries[i] = e
				continue
			}
			positions[e.Key] = len(entries)
			entries = append(entries, e)
		}

		if err = B.table.setBucket(bucketNo, entries); err != nil {
			return
		}
		delete(B.pending, bucketNo)
	}
	B.size = 0

	return
}
