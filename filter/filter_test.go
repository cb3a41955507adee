//go:build unit

package filter

import (
	"testing"

	"github.com/gostonefire/tripindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func trip(index string, total float64, dest string) model.Trip {
	return model.Trip{Index: index, TotalAmount: total, DOLocationID: dest, PickupDatetime: "2020-01-02 10:00:00"}
}

func TestPriceRange_Match(t *testing.T) {
	t.Run("open range matches everything", func(t *testing.T) {
		assert.True(t, Matches(PriceRange{}, trip("1", -5, "A")), "negative total")
		assert.True(t, Matches(All(), trip("1", 1e9, "A")), "huge total")
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		// Prepare
		r := Between(10, 20)

		// Check
		assert.True(t, r.Match(trip("1", 10, "A")), "lower bound")
		assert.True(t, r.Match(trip("1", 20, "A")), "upper bound")
		assert.False(t, r.Match(trip("1", 9.99, "A")), "below")
		assert.False(t, r.Match(trip("1", 20.01, "A")), "above")
	})

	t.Run("single bounds", func(t *testing.T) {
		assert.True(t, AtLeast(15).Match(trip("1", 15, "A")), "at least")
		assert.False(t, AtLeast(15).Match(trip("1", 14, "A")), "below min")
		assert.True(t, AtMost(15).Match(trip("1", 3, "A")), "at most")
		assert.False(t, AtMost(15).Match(trip("1", 16, "A")), "above max")
	})
}

func TestEquality_Match(t *testing.T) {
	t.Run("key destination and pickup day", func(t *testing.T) {
		tr := trip("7", 10, "B")
		assert.True(t, KeyEquals{Key: "7"}.Match(tr), "key match")
		assert.False(t, KeyEquals{Key: "70"}.Match(tr), "key mismatch")
		assert.True(t, DestinationEquals{ID: "B"}.Match(tr), "destination match")
		assert.False(t, DestinationEquals{ID: "A"}.Match(tr), "destination mismatch")
		assert.True(t, PickupDate{Day: "2020-01-02"}.Match(tr), "pickup day match")
		assert.False(t, PickupDate{Day: "2020-01-03"}.Match(tr), "pickup day mismatch")
	})
}

func TestComposite_Match(t *testing.T) {
	t.Run("empty composites", func(t *testing.T) {
		assert.True(t, Matches(And{}, trip("1", 1, "A")), "empty And is true")
		assert.False(t, Matches(Or{}, trip("1", 1, "A")), "empty Or is false")
	})

	t.Run("nested composites", func(t *testing.T) {
		// Prepare
		e := And{AtLeast(15), Or{DestinationEquals{ID: "A"}, KeyEquals{Key: "3"}}}

		// Check
		assert.False(t, e.Match(trip("1", 10, "A")), "too cheap")
		assert.True(t, e.Match(trip("2", 20, "A")), "expensive to A")
		assert.True(t, e.Match(trip("3", 30, "B")), "key 3")
		assert.False(t, e.Match(trip("4", 30, "B")), "expensive to B")
	})

	t.Run("nil expression matches", func(t *testing.T) {
		assert.True(t, Matches(nil, trip("1", 1, "A")), "nil is no filter")
	})
}

func TestParse(t *testing.T) {
	t.Run("empty text is no filter", func(t *testing.T) {
		// Execute
		e, err := Parse("  ")

		// Check
		assert.NoError(t, err, "parses")
		assert.Equal(t, All(), e, "identity filter")
	})

	t.Run("comparisons and composites", func(t *testing.T) {
		// Execute
		e, err := Parse(`total >= 15 && (dest == "A" or key == "3")`)

		// Check
		assert.NoError(t, err, "parses")
		assert.Equal(t, And{AtLeast(15), Or{DestinationEquals{ID: "A"}, KeyEquals{Key: "3"}}}, e, "tree built")
	})

	t.Run("chains are flattened", func(t *testing.T) {
		// Execute
		e, err := Parse(`total >= 1 && total <= 2 && pickup == "2020-01-02"`)

		// Check
		assert.NoError(t, err, "parses")
		assert.Equal(t, And{AtLeast(1), AtMost(2), PickupDate{Day: "2020-01-02"}}, e, "flat And")
	})

	t.Run("literal on the left is mirrored", func(t *testing.T) {
		// Execute
		e, err := Parse(`15.5 <= total`)

		// Check
		assert.NoError(t, err, "parses")
		assert.Equal(t, AtLeast(15.5), e, "lower bound")
	})

	t.Run("strict comparisons exclude the bound", func(t *testing.T) {
		// Execute
		above, err := Parse(`total > 10`)
		require.NoError(t, err, "parses >")
		below, err := Parse(`10 > total`)
		require.NoError(t, err, "parses mirrored <")

		// Check
		assert.Equal(t, Above(10), above, "strict lower bound")
		assert.Equal(t, Below(10), below, "strict upper bound")
		assert.False(t, above.Match(model.Trip{TotalAmount: 10}), "10 is not above 10")
		assert.True(t, above.Match(model.Trip{TotalAmount: 10.01}), "above 10")
		assert.False(t, below.Match(model.Trip{TotalAmount: 10}), "10 is not below 10")
		assert.True(t, below.Match(model.Trip{TotalAmount: 9.99}), "below 10")
		assert.Equal(t, "total > 10", above.String(), "renders strict")
	})

	t.Run("equality on total is a closed range", func(t *testing.T) {
		// Execute
		e, err := Parse(`total == 25`)

		// Check
		assert.NoError(t, err, "parses")
		assert.Equal(t, Between(25, 25), e, "min equals max")
	})

	t.Run("unsupported input is rejected", func(t *testing.T) {
		for _, text := range []string{`fare > 3`, `dest > "A"`, `total >= "x"`, `total + 1`, `dest == 5`, `total >=`} {
			_, err := Parse(text)
			assert.Error(t, err, text)
		}
		_, err := Parse(`fare > 3`)
		assert.ErrorIs(t, err, ErrUnsupportedExpression, "typed error")
	})

	t.Run("String renders parseable text", func(t *testing.T) {
		// Prepare
		e := And{Between(1, 2), Or{DestinationEquals{ID: "A"}, PickupDate{Day: "2020-01-02"}}, KeyEquals{Key: "k"},
			PriceRange{Min: ptr(1), Max: ptr(2), MaxExclusive: true}}

		// Execute
		again, err := Parse(e.String())

		// Check
		assert.NoError(t, err, "parses rendered text")
		tr := model.Trip{Index: "k", TotalAmount: 1.5, DOLocationID: "A"}
		assert.Equal(t, e.Match(tr), again.Match(tr), "same verdict")
		assert.Equal(t, "false", Or{}.String(), "empty Or")
		assert.Equal(t, "true", And{}.String(), "empty And")
	})
}
