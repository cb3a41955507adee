// Package diskhash implements a persistent key to trip store made of a fixed number of bucket files.
//
// Every insert or remove loads the whole entry list of one bucket, changes it and rewrites the bucket
// file. This keeps the storage format trivial at the cost of write amplification, which stays acceptable
// as long as the bucket count keeps each bucket small relative to the dataset. There is no resizing,
// rebalancing, compaction or locking: callers that write to the same bucket from several goroutines or
// processes must serialize those calls themselves.
package diskhash

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/gostonefire/tripindex/hashfunc"
	"github.com/gostonefire/tripindex/internal/hash"
	"github.com/gostonefire/tripindex/internal/storage"
	"github.com/gostonefire/tripindex/model"
)

// DefaultNumberOfBuckets - Bucket count used when Conf.NumberOfBuckets is zero on a new table
const DefaultNumberOfBuckets int64 = 256

// Conf - Is a struct to be passed in the call to Open and contains configuration for the table.
//   - Dir is the table directory, it is created if missing
//   - NumberOfBuckets is the fixed bucket count, zero means DefaultNumberOfBuckets for a new table or the recorded count for an existing one
//   - HashAlgorithm is an optional custom bucket selection algorithm
//   - Hash names the internal algorithm used when HashAlgorithm is nil, "xxhash" (default) or "crc32"
//   - Codec is the bucket serialization, "json" (default) or "cbor"
//   - Compress set to true stores bucket files zstd compressed
//   - CacheSize is the number of decoded buckets kept in memory, zero disables the cache
//   - CacheTTL is how long a cached bucket stays valid, zero means no expiry
//   - BuildBatch is the number of records BuildFromSource buffers before rewriting buckets, values below 2 insert one by one
//   - Logger receives diagnostics, nil means slog.Default()
type Conf struct {
	Dir             string
	NumberOfBuckets int64
	HashAlgorithm   hashfunc.HashAlgorithm
	Hash            string
	Codec           string
	Compress        bool
	CacheSize       uint64
	CacheTTL        time.Duration
	BuildBatch      int
	Logger          *slog.Logger
}

// HashMapStat - Statistics on the overall usage and distribution over buckets
//   - Records is the total number of records stored
//   - LargestBucket is the number of records in the fullest bucket
//   - BucketDistribution is the number of records stored in each bucket
type HashMapStat struct {
	Records            int64
	LargestBucket      int64
	BucketDistribution []int64
}

// DiskHashTable - The main implementation struct
type DiskHashTable struct {
	dir             string
	numberOfBuckets int64
	hashAlgorithm   hashfunc.HashAlgorithm
	bucketFile      storage.BucketFile
	cache           *ttlcache.Cache[int64, []model.TripEntry]
	buildBatch      int
	logger          *slog.Logger
}

// Open - Opens the table in conf.Dir, creating the directory and any missing bucket file.
// Existing bucket files are never truncated, so opening the same directory again yields the same table.
// A directory that already holds a table must be opened with a compatible configuration; zero values
// in conf adopt what the table was created with.
//   - conf is a Conf struct with the table configuration
//
// It returns:
//   - table is a pointer to a DiskHashTable
//   - err is either of type ManifestMismatch or a standard error
func Open(conf Conf) (table *DiskHashTable, err error) {
	if conf.Dir == "" {
		err = fmt.Errorf("directory can not be empty, it will hold the bucket files")
		return
	}
	if conf.NumberOfBuckets < 0 {
		err = fmt.Errorf("number of buckets must be a positive value")
		return
	}

	logger := conf.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err = os.MkdirAll(conf.Dir, 0755); err != nil {
		err = fmt.Errorf("error while creating table directory: %w", err)
		return
	}

	manifest, err := resolveManifest(conf)
	if err != nil {
		return
	}

	codec, err := storage.CodecByName(manifest.Codec)
	if err != nil {
		return
	}

	hashAlgorithm := conf.HashAlgorithm
	if hashAlgorithm == nil {
		hashAlgorithm, err = hash.ByName(manifest.Hash, manifest.NumberOfBuckets)
		if err != nil {
			return
		}
	} else {
		hashAlgorithm.SetTableSize(manifest.NumberOfBuckets)
	}
	if hashAlgorithm.GetTableSize() != manifest.NumberOfBuckets {
		err = ManifestMismatch{msg: fmt.Sprintf("hash algorithm addresses %d buckets but table has %d", hashAlgorithm.GetTableSize(), manifest.NumberOfBuckets)}
		return
	}

	table = &DiskHashTable{
		dir:             conf.Dir,
		numberOfBuckets: manifest.NumberOfBuckets,
		hashAlgorithm:   hashAlgorithm,
		bucketFile:      storage.BucketFile{Codec: codec, Compressed: manifest.Compressed},
		buildBatch:      conf.BuildBatch,
		logger:          logger,
	}

	if conf.CacheSize > 0 {
		table.cache = ttlcache.New[int64, []model.TripEntry](
			ttlcache.WithCapacity[int64, []model.TripEntry](conf.CacheSize),
			ttlcache.WithTTL[int64, []model.TripEntry](conf.CacheTTL),
			ttlcache.WithDisableTouchOnHit[int64, []model.TripEntry](),
		)
	}

	var created int
	var ok bool
	for i := int64(0); i < table.numberOfBuckets; i++ {
		ok, err = table.bucketFile.CreateIfMissing(table.bucketFileName(i))
		if err != nil {
			err = fmt.Errorf("error while creating bucket file: %w", err)
			table = nil
			return
		}
		if ok {
			created++
		}
	}

	logger.Debug("opened disk hash table",
		slog.String("dir", conf.Dir),
		slog.Int64("buckets", table.numberOfBuckets),
		slog.Int("createdBuckets", created),
		slog.String("codec", codec.Name()),
		slog.Bool("compressed", manifest.Compressed))

	return
}

// OpenExisting - Like Open but only for a directory that already holds a table.
// Nothing is created on disk when dir has no table manifest.
//   - conf is a Conf struct with the table configuration
//
// It returns:
//   - table is a pointer to a DiskHashTable
//   - err is either of type NotATable, ManifestMismatch or a standard error
func OpenExisting(conf Conf) (table *DiskHashTable, err error) {
	if conf.Dir == "" {
		err = fmt.Errorf("directory can not be empty, it holds the bucket files")
		return
	}

	_, found, err := storage.ReadManifest(conf.Dir)
	if err != nil {
		return
	}
	if !found {
		err = NotATable{Dir: conf.Dir}
		return
	}

	table, err = Open(conf)

	return
}

// resolveManifest - Compares conf with the manifest in the directory, writing a new manifest for a new table
func resolveManifest(conf Conf) (manifest storage.Manifest, err error) {
	existing, found, err := storage.ReadManifest(conf.Dir)
	if err != nil {
		return
	}

	if !found {
		manifest = storage.Manifest{
			InternalHash:    conf.HashAlgorithm == nil,
			NumberOfBuckets: conf.NumberOfBuckets,
			Codec:           conf.Codec,
			Compressed:      conf.Compress,
		}
		if manifest.InternalHash {
			manifest.Hash = conf.Hash
			if manifest.Hash == "" {
				manifest.Hash = hash.NameXXHash
			}
			if _, err = hash.ByName(manifest.Hash, 1); err != nil {
				return
			}
		}
		if manifest.NumberOfBuckets == 0 {
			manifest.NumberOfBuckets = DefaultNumberOfBuckets
		}
		if manifest.Codec == "" {
			manifest.Codec = storage.CodecJSON
		}
		err = storage.WriteManifest(conf.Dir, manifest)
		return
	}

	// Check for mismatch against the recorded layout
	if conf.NumberOfBuckets != 0 && conf.NumberOfBuckets != existing.NumberOfBuckets {
		err = ManifestMismatch{msg: fmt.Sprintf("table has %d buckets, %d requested", existing.NumberOfBuckets, conf.NumberOfBuckets)}
		return
	}
	if conf.Codec != "" && conf.Codec != existing.Codec {
		err = ManifestMismatch{msg: fmt.Sprintf("table uses codec %s, %s requested", existing.Codec, conf.Codec)}
		return
	}
	if conf.Compress && !existing.Compressed {
		err = ManifestMismatch{msg: "table was created without compression"}
		return
	}
	if existing.InternalHash && conf.HashAlgorithm != nil {
		err = ManifestMismatch{msg: "seems the table was used with the internal hash algorithm but an external was given"}
		return
	}
	if !existing.InternalHash && conf.HashAlgorithm == nil {
		err = ManifestMismatch{msg: "seems the table was used with an external hash algorithm but no external was given"}
		return
	}
	if existing.InternalHash && existing.Hash == "" {
		existing.Hash = hash.NameXXHash
	}
	if existing.InternalHash && conf.Hash != "" && conf.Hash != existing.Hash {
		err = ManifestMismatch{msg: fmt.Sprintf("table uses hash algorithm %s, %s requested", existing.Hash, conf.Hash)}
		return
	}

	manifest = existing

	return
}

// Dir - Returns the table directory
func (D *DiskHashTable) Dir() string {
	return D.dir
}

// NumberOfBuckets - Returns the fixed bucket count of the table
func (D *DiskHashTable) NumberOfBuckets() int64 {
	return D.numberOfBuckets
}

// RemoveFiles - Removes the bucket files and manifest, and the directory itself if nothing else is left in it.
func (D *DiskHashTable) RemoveFiles() (err error) {
	if D.cache != nil {
		D.cache.DeleteAll()
	}

	for i := int64(0); i < D.numberOfBuckets; i++ {
		if err = os.Remove(D.bucketFileName(i)); err != nil && !os.IsNotExist(err) {
			err = fmt.Errorf("error while removing bucket file: %w", err)
			return
		}
	}
	if err = os.Remove(storage.ManifestPath(D.dir)); err != nil && !os.IsNotExist(err) {
		err = fmt.Errorf("error while removing manifest: %w", err)
		return
	}

	// Only remove the directory if it is empty, it may have been shared with other files
	if entries, e := os.ReadDir(D.dir); e == nil && len(entries) == 0 {
		_ = os.Remove(D.dir)
	}
	err = nil

	return
}

func (D *DiskHashTable) bucketFileName(bucketNo int64) string {
	return storage.BucketFileName(D.dir, bucketNo, D.bucketFile.Codec, D.bucketFile.Compressed)
}
