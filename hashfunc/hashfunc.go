package hashfunc

// HashAlgorithm - Interface that permits an implementation using the DiskHashTable to supply a custom bucket
// selection algorithm suited for its particular distribution of keys.
//
// Buckets persist on disk between runs, so an implementation must return the same bucket for the same key
// in every process. Hash functions seeded per process (such as hash/maphash) can not be used.
type HashAlgorithm interface {
	// SetTableSize - Sets the table size for the hash algorithm.
	// It is called both when creating a new table and when opening an existing one. Hence, if a custom
	// hash algorithm is supplied that implements this interface and the instance is already having a table size, it
	// will be overwritten by the number of buckets that is/was configured for the table.
	//   - tableSize is the number of buckets the table will address
	SetTableSize(tableSize int64)

	// HashFunc1 - Given key it generates an index (bucket) between 0 and table size - 1
	// Any number returned outside the table size (0 -> table size - 1) will result in an error down stream.
	HashFunc1(key []byte) int64

	// GetTableSize - Returns the table size the implemented hash function is supporting
	GetTableSize() int64
}
