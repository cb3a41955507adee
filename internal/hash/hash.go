package hash

import (
	"fmt"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"

	"github.com/gostonefire/tripindex/hashfunc"
)

// Names of the internal bucket algorithms, as recorded in the table manifest
const (
	NameXXHash = "xxhash"
	NameCRC32  = "crc32"
)

// ByName - Returns the internal bucket algorithm registered under name, an empty name gives xxhash
//   - name is either NameXXHash or NameCRC32
//   - tableSize is the number of buckets the algorithm will address
func ByName(name string, tableSize int64) (hashAlgorithm hashfunc.HashAlgorithm, err error) {
	switch name {
	case "", NameXXHash:
		hashAlgorithm = NewStableHashAlgorithm(tableSize)
	case NameCRC32:
		hashAlgorithm = NewCRC32HashAlgorithm(tableSize)
	default:
		err = fmt.Errorf("unknown bucket hash algorithm %q", name)
	}

	return
}

// StableHashAlgorithm - The internally used bucket selection algorithm. It hashes the key with xxhash64,
// which gives the same value in every process, and applies bucket = hash mod tableSize.
type StableHashAlgorithm struct {
	tableSize int64
}

// NewStableHashAlgorithm - Returns a pointer to a new StableHashAlgorithm instance
func NewStableHashAlgorithm(tableSize int64) *StableHashAlgorithm {
	ha := &StableHashAlgorithm{}
	ha.SetTableSize(tableSize)
	return ha
}

// SetTableSize - Sets the table size for the hash algorithm, values below 1 are raised to 1
//   - tableSize is the number of buckets the table will address
func (S *StableHashAlgorithm) SetTableSize(tableSize int64) {
	if tableSize < 1 {
		tableSize = 1
	}
	S.tableSize = tableSize
}

// HashFunc1 - Given key it generates an index (bucket) between 0 and table size - 1
func (S *StableHashAlgorithm) HashFunc1(key []byte) int64 {
	return int64(xxhash.Sum64(key) % uint64(S.tableSize))
}

// GetTableSize - Returns the table size the hash function is supporting
func (S *StableHashAlgorithm) GetTableSize() int64 {
	return S.tableSize
}

// CRC32HashAlgorithm - Alternative bucket selection using crc32.ChecksumIEEE over the key and
// bucket = hash mod tableSize. Slightly cheaper than xxhash on short keys but with a weaker spread.
type CRC32HashAlgorithm struct {
	tableSize int64
}

// NewCRC32HashAlgorithm - Returns a pointer to a new CRC32HashAlgorithm instance
func NewCRC32HashAlgorithm(tableSize int64) *CRC32HashAlgorithm {
	ha := &CRC32HashAlgorithm{}
	ha.SetTableSize(tableSize)
	return ha
}

// SetTableSize - Sets the table size for the hash algorithm, values below 1 are raised to 1
func (C *CRC32HashAlgorithm) SetTableSize(tableSize int64) {
	if tableSize < 1 {
		tableSize = 1
	}
	C.tableSize = tableSize
}

// HashFunc1 - Given key it generates an index (bucket) between 0 and table size - 1
func (C *CRC32HashAlgorithm) HashFunc1(key []byte) int64 {
	return int64(crc32.ChecksumIEEE(key)) % C.tableSize
}

// GetTableSize - Returns the table size the hash function is supporting
func (C *CRC32HashAlgorithm) GetTableSize() int64 {
	return C.tableSize
}
