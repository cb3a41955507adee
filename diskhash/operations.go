package diskhash

import (
	"fmt"
	"slices"

	"github.com/jellydator/ttlcache/v3"

	"github.com/gostonefire/tripindex/model"
)

// Get - Gets the trip stored under key.
//   - key is the record key
//
// It returns:
//   - trip is the stored trip if found
//   - found is false if no entry has the key, this is not an error
//   - err is a standard error, if something went wrong
func (D *DiskHashTable) Get(key string) (trip model.Trip, found bool, err error) {
	bucketNo, err := D.GetBucketNo(key)
	if err != nil {
		return
	}
	entries, err := D.getBucket(bucketNo)
	if err != nil {
		return
	}

	// Sort out entry with correct key
	for _, entry := range entries {
		if entry.Key == key {
			trip = entry.Trip
			found = true
			return
		}
	}

	return
}

// Insert - Updates an existing entry with a new trip or adds it if no existing is found with same key.
// The whole bucket is rewritten.
//   - key is the record key
//   - trip is the trip to store
//
// It returns:
//   - err is a standard error, if something went wrong
func (D *DiskHashTable) Insert(key string, trip model.Trip) (err error) {
	bucketNo, err := D.GetBucketNo(key)
	if err != nil {
		return
	}
	entries, err := D.getBucket(bucketNo)
	if err != nil {
		return
	}

	entries = upsert(entries, model.TripEntry{Key: key, Trip: trip})

	if err = D.setBucket(bucketNo, entries); err != nil {
		err = fmt.Errorf("error while updating or adding record to bucket: %w", err)
	}

	return
}

// Remove - Removes the entry stored under key and rewrites its bucket.
//   - key is the record key
//
// It returns:
//   - removed is true if an entry was found and removed
//   - err is a standard error, if something went wrong
func (D *DiskHashTable) Remove(key string) (removed bool, err error) {
	bucketNo, err := D.GetBucketNo(key)
	if err != nil {
		return
	}
	entries, err := D.getBucket(bucketNo)
	if err != nil {
		return
	}

	idx := slices.IndexFunc(entries, func(e model.TripEntry) bool { return e.Key == key })
	if idx < 0 {
		return
	}
	entries = slices.Delete(entries, idx, idx+1)

	if err = D.setBucket(bucketNo, entries); err != nil {
		err = fmt.Errorf("error while removing record from bucket: %w", err)
		return
	}
	removed = true

	return
}

// Stat - Walks through the entire set of buckets and produce a HashMapStat struct with information.
// Only one bucket is held in memory at a time.
//   - includeDistribution set to true will include a slice of length NumberOfBuckets with number of records per bucket, false will set HashMapStat.BucketDistribution to nil.
func (D *DiskHashTable) Stat(includeDistribution bool) (hashMapStat *HashMapStat, err error) {
	var hms HashMapStat
	var entries []model.TripEntry

	if includeDistribution {
		hms.BucketDistribution = make([]int64, D.numberOfBuckets)
	}

	// Iterate over every bucket
	for i := int64(0); i < D.numberOfBuckets; i++ {
		entries, err = D.bucketFile.Read(D.bucketFileName(i))
		if err != nil {
			return
		}
		n := int64(len(entries))
		hms.Records += n
		if n > hms.LargestBucket {
			hms.LargestBucket = n
		}
		if includeDistribution {
			hms.BucketDistribution[i] = n
		}
	}

	hashMapStat = &hms
	return
}

// GetBucketNo - Returns which bucket number that the given key results in
//   - key is the record key
func (D *DiskHashTable) GetBucketNo(key string) (bucketNo int64, err error) {
	bucketNo = D.hashAlgorithm.HashFunc1([]byte(key))
	if bucketNo < 0 || bucketNo >= D.numberOfBuckets {
		err = BucketOutOfRange{BucketNo: bucketNo, NumberOfBuckets: D.numberOfBuckets}
		return
	}

	return
}

// getBucket - Returns the entry list of a bucket, from the cache when enabled.
// The returned slice is owned by the caller and may be modified.
func (D *DiskHashTable) getBucket(bucketNo int64) (entries []model.TripEntry, err error) {
	if D.cache != nil {
		if item := D.cache.Get(bucketNo); item != nil {
			entries = slices.Clone(item.Value())
			return
		}
	}

	entries, err = D.bucketFile.Read(D.bucketFileName(bucketNo))
	if err != nil {
		err = fmt.Errorf("error while getting existing bucket entries: %w", err)
		return
	}

	if D.cache != nil {
		D.cache.Set(bucketNo, slices.Clone(entries), ttlcache.DefaultTTL)
	}

	return
}

// setBucket - Rewrites a bucket with entries and refreshes the cache
func (D *DiskHashTable) setBucket(bucketNo int64, entries []model.TripEntry) (err error) {
	if err = D.bucketFile.Write(D.bucketFileName(bucketNo), entries); err != nil {
		if D.cache != nil {
			D.cache.Delete(bucketNo)
		}
		return
	}

	if D.cache != nil {
		D.cache.Set(bucketNo, slices.Clone(entries), ttlcache.DefaultTTL)
	}

	return
}

// upsert - Replaces the entry with the same key by linear scan, or appends it
func upsert(entries []model.TripEntry, entry model.TripEntry) []model.TripEntry {
	for i := range entries {
		if entries[i].Key == entry.Key {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}
