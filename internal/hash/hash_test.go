//go:build unit

package hash

import (
	"hash/crc32"
	"strconv"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
)

func TestStableHashAlgorithm_HashFunc1(t *testing.T) {
	t.Run("creates a valid bucket number", func(t *testing.T) {
		// Prepare
		h := NewStableHashAlgorithm(256)
		key := []byte("123456")

		// Execute
		bucketNo := h.HashFunc1(key)

		// Check
		assert.Equal(t, int64(xxhash.Sum64(key)%256), bucketNo, "bucket is hash mod table size")
		assert.Equal(t, bucketNo, NewStableHashAlgorithm(256).HashFunc1(key), "same bucket from a new instance")
	})

	t.Run("spreads keys over every bucket", func(t *testing.T) {
		// Prepare
		h := NewStableHashAlgorithm(16)
		seen := make(map[int64]int)

		// Execute
		for i := 0; i < 10000; i++ {
			seen[h.HashFunc1([]byte(strconv.Itoa(i)))]++
		}

		// Check
		assert.Len(t, seen, 16, "all buckets used")
		for b := range seen {
			assert.True(t, b >= 0 && b < 16, "bucket in range")
		}
	})
}

func TestStableHashAlgorithm_SetTableSize(t *testing.T) {
	t.Run("updates table size", func(t *testing.T) {
		// Prepare
		h := NewStableHashAlgorithm(10)

		// Execute
		h.SetTableSize(0)

		// Check
		assert.Equal(t, int64(1), h.GetTableSize(), "raised to one")
		assert.Equal(t, int64(0), h.HashFunc1([]byte("x")), "single bucket")
	})
}

func TestCRC32HashAlgorithm_HashFunc1(t *testing.T) {
	t.Run("creates a valid bucket number", func(t *testing.T) {
		// Prepare
		a := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		h := NewCRC32HashAlgorithm(10)

		// Execute
		bucketNo := h.HashFunc1(a)

		// Check
		assert.Equal(t, int64(crc32.ChecksumIEEE(a))%10, bucketNo, "bucket is checksum mod table size")
		assert.Equal(t, int64(10), h.GetTableSize(), "table size kept")
	})
}

func TestByName(t *testing.T) {
	t.Run("returns the named algorithm", func(t *testing.T) {
		// Execute
		def, errDef := ByName("", 8)
		xx, errXX := ByName(NameXXHash, 8)
		c, errC := ByName(NameCRC32, 8)
		_, errUnknown := ByName("md5", 8)

		// Check
		assert.NoError(t, errDef, "empty name")
		assert.IsType(t, &StableHashAlgorithm{}, def, "xxhash by default")
		assert.NoError(t, errXX, "xxhash")
		assert.IsType(t, &StableHashAlgorithm{}, xx, "xxhash")
		assert.NoError(t, errC, "crc32")
		assert.IsType(t, &CRC32HashAlgorithm{}, c, "crc32")
		assert.Equal(t, int64(8), c.GetTableSize(), "table size set")
		assert.Error(t, errUnknown, "unknown name")
	})
}
