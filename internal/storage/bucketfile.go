package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/gostonefire/tripindex/model"
)

// bucketBufferSize - Size of the buffers used when reading or writing a bucket file
const bucketBufferSize = 32 * 1024

// BucketFile - Reads and writes the entry lists of single bucket files.
// A zero length file is a valid empty bucket.
type BucketFile struct {
	Codec      Codec
	Compressed bool
}

// CreateIfMissing - Creates an empty bucket file at fileName unless a file already exists there
//
// It returns:
//   - created is true if a new file was created
//   - err is a standard error
func (B BucketFile) CreateIfMissing(fileName string) (created bool, err error) {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			err = nil
		}
		return
	}
	created = true
	err = file.Close()

	return
}

// Read - Reads the complete entry list of a bucket file.
// A missing or empty file returns an empty list.
func (B BucketFile) Read(fileName string) (entries []model.TripEntry, err error) {
	file, err := os.Open(fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		return
	}
	defer func(file *os.File) { _ = file.Close() }(file)

	stat, err := file.Stat()
	if err != nil {
		return
	}
	if stat.Size() == 0 {
		return
	}

	var r io.Reader = bufio.NewReaderSize(file, bucketBufferSize)
	if B.Compressed {
		var dec *zstd.Decoder
		dec, err = zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			err = fmt.Errorf("error while creating bucket decompressor: %w", err)
			return
		}
		defer dec.Close()
		r = dec
	}

	entries, err = B.Codec.Decode(r)
	if err != nil {
		err = fmt.Errorf("error while decoding bucket file %s: %w", filepath.Base(fileName), err)
	}

	return
}

// Write - Replaces the contents of a bucket file with entries.
// The list is written to a temporary file in the same directory which is then renamed over the bucket
// file, so readers see either the old or the new list but never a partial one.
func (B BucketFile) Write(fileName string, entries []model.TripEntry) (err error) {
	err = writeAtomic(fileName, func(f *os.File) (e error) {
		buf := bufio.NewWriterSize(f, bucketBufferSize)
		var w io.Writer = buf

		var enc *zstd.Encoder
		if B.Compressed {
			enc, e = zstd.NewWriter(buf, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
			if e != nil {
				return fmt.Errorf("error while creating bucket compressor: %w", e)
			}
			w = enc
		}

		if e = B.Codec.Encode(w, entries); e != nil {
			if enc != nil {
				_ = enc.Close()
			}
			return fmt.Errorf("error while encoding bucket: %w", e)
		}
		if enc != nil {
			if e = enc.Close(); e != nil {
				return fmt.Errorf("error while compressing bucket: %w", e)
			}
		}

		return buf.Flush()
	})

	return
}

// writeAtomic - Calls write with a temporary file next to fileName, syncs it and renames it over fileName.
// The temporary file is removed on every failure path.
func writeAtomic(fileName string, write func(f *os.File) error) (err error) {
	tmpName := fmt.Sprintf("%s.%s.tmp", fileName, uuid.NewString())

	file, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		err = fmt.Errorf("error while creating temporary file: %w", err)
		return
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(file); err != nil {
		_ = file.Close()
		return
	}
	if err = file.Sync(); err != nil {
		_ = file.Close()
		err = fmt.Errorf("error while syncing temporary file: %w", err)
		return
	}
	if err = file.Close(); err != nil {
		err = fmt.Errorf("error while closing temporary file: %w", err)
		return
	}
	if err = os.Rename(tmpName, fileName); err != nil {
		err = fmt.Errorf("error while replacing %s: %w", filepath.Base(fileName), err)
	}

	return
}
