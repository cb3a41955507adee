//go:build unit

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRow() []string {
	return []string{
		"1", "2020-01-01 00:28:15", "2020-01-01 00:33:03", "1", "1.20", "1", "N",
		"238", "239", "1", "6", "3", "0.5", "1.47", "0", "0.3", "11.27", "42",
	}
}

func TestFromRow(t *testing.T) {
	t.Run("parses every column", func(t *testing.T) {
		// Execute
		trip, defaulted := FromRow(sampleRow())

		// Check
		assert.Equal(t, 0, defaulted, "no defaulted fields")
		assert.Equal(t, "42", trip.Index, "key is the last column")
		assert.Equal(t, "1", trip.VendorID, "vendor")
		assert.Equal(t, "2020-01-01 00:28:15", trip.PickupDatetime, "pickup kept as text")
		assert.Equal(t, uint32(1), trip.PassengerCount, "passengers")
		assert.Equal(t, 1.2, trip.TripDistance, "distance")
		assert.Equal(t, "239", trip.DOLocationID, "destination")
		assert.Equal(t, 11.27, trip.TotalAmount, "total amount")
	})

	t.Run("unparsable numeric fields default to zero", func(t *testing.T) {
		// Prepare
		row := sampleRow()
		row[3] = "many"
		row[4] = "-3"
		row[16] = ""

		// Execute
		trip, defaulted := FromRow(row)

		// Check
		assert.Equal(t, 3, defaulted, "three defaulted fields")
		assert.Equal(t, uint32(0), trip.PassengerCount, "passengers defaulted")
		assert.Equal(t, 0.0, trip.TripDistance, "negative distance defaulted")
		assert.Equal(t, 0.0, trip.TotalAmount, "total defaulted")
		assert.Equal(t, "239", trip.DOLocationID, "other fields intact")
	})

	t.Run("infinite and NaN values default to zero", func(t *testing.T) {
		// Prepare
		row := sampleRow()
		row[4] = "+Inf"
		row[13] = "NaN"
		row[16] = "Inf"

		// Execute
		trip, defaulted := FromRow(row)

		// Check
		assert.Equal(t, 3, defaulted, "three defaulted fields")
		assert.Equal(t, 0.0, trip.TripDistance, "distance defaulted")
		assert.Equal(t, 0.0, trip.TipAmount, "tip defaulted")
		assert.Equal(t, 0.0, trip.TotalAmount, "total defaulted")
	})
}

func TestTrip_ToRow(t *testing.T) {
	t.Run("formats in canonical column order", func(t *testing.T) {
		// Prepare
		row := sampleRow()
		trip, _ := FromRow(row)

		// Execute
		out := trip.ToRow()

		// Check
		assert.Len(t, out, NumberOfColumns, "all columns present")
		assert.Equal(t, "1.2", out[4], "distance formatted")
		assert.Equal(t, "11.27", out[16], "total formatted")
		assert.Equal(t, "42", out[17], "key last")
		again, _ := FromRow(out)
		assert.Equal(t, trip, again, "parsing output yields the same trip")
	})
}

func TestHeader(t *testing.T) {
	t.Run("header is a copy of the column names", func(t *testing.T) {
		// Execute
		h := Header()
		h[0] = "changed"

		// Check
		assert.Equal(t, "vendor_id", Columns[0], "columns untouched")
		assert.Equal(t, "index", Header()[NumberOfColumns-1], "key column last")
	})
}
