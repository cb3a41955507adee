package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// ManifestFileName - Name of the file in the table directory that describes the table layout
const ManifestFileName = "table.json"

// bucketFilePrefix - Prefix of every bucket file name
const bucketFilePrefix = "bucket_"

// zstdSuffix - Suffix added to bucket file names when buckets are compressed
const zstdSuffix = ".zst"

// Manifest - Represents the table layout written once when the table directory is created
type Manifest struct {
	InternalHash    bool   `json:"internal_hash"`
	Hash            string `json:"hash,omitempty"`
	NumberOfBuckets int64  `json:"number_of_buckets"`
	Codec           string `json:"codec"`
	Compressed      bool   `json:"compressed"`
}

// BucketFileName - Return the bucket file name given the table directory and bucket number
func BucketFileName(dir string, bucketNo int64, codec Codec, compressed bool) (fileName string) {
	fileName = filepath.Join(dir, fmt.Sprintf("%s%03d.%s", bucketFilePrefix, bucketNo, codec.Extension()))
	if compressed {
		fileName += zstdSuffix
	}
	return
}

// ManifestPath - Return the manifest file name given the table directory
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestFileName)
}

// ReadManifest - Reads the manifest from the table directory
//
// It returns:
//   - manifest is the decoded Manifest
//   - found is false if the directory has no manifest yet, err is nil in that case
//   - err is a standard error
func ReadManifest(dir string) (manifest Manifest, found bool, err error) {
	buf, err := os.ReadFile(ManifestPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		return
	}

	if err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(buf, &manifest); err != nil {
		err = fmt.Errorf("error while decoding manifest: %w", err)
		return
	}
	found = true

	return
}

// WriteManifest - Writes the manifest to the table directory, replacing any earlier one atomically
func WriteManifest(dir string, manifest Manifest) (err error) {
	buf, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(manifest, "", "  ")
	if err != nil {
		err = fmt.Errorf("error while encoding manifest: %w", err)
		return
	}

	err = writeAtomic(ManifestPath(dir), func(f *os.File) error {
		_, e := f.Write(buf)
		return e
	})

	return
}
