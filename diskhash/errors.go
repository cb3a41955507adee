package diskhash

import (
	"fmt"

	"github.com/gostonefire/tripindex/internal/storage"
)

// BucketOutOfRange - Custom error to inform that a hash algorithm returned a bucket number outside the table
type BucketOutOfRange struct {
	BucketNo        int64
	NumberOfBuckets int64
}

// Error - Used to notify that the bucket number is outside permitted range
func (B BucketOutOfRange) Error() string {
	return fmt.Sprintf("bucket number %d from bucket algorithm is outside permitted range 0-%d", B.BucketNo, B.NumberOfBuckets-1)
}

// ManifestMismatch - Custom error to inform that the configuration given when opening a table
// doesn't match the layout the table directory was created with
type ManifestMismatch struct {
	msg string
}

// Error - Used to notify a configuration mismatch
func (M ManifestMismatch) Error() string {
	if M.msg == "" {
		return "configuration does not match existing table"
	}
	return M.msg
}

// NotATable - Custom error to inform that a directory holds no table
type NotATable struct {
	Dir string
}

// Error - Used to notify that the directory is not a table directory
func (N NotATable) Error() string {
	return fmt.Sprintf("%s is not an index directory, no %s found", N.Dir, storage.ManifestFileName)
}
