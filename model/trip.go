package model

import (
	"math"
	"strconv"
	"strings"
)

// NumberOfColumns - Number of data columns in one input row
const NumberOfColumns = 18

// Columns - Canonical column order of both the input dataset and filtered output files
var Columns = [NumberOfColumns]string{
	"vendor_id",
	"pickup_datetime",
	"dropoff_datetime",
	"passenger_count",
	"trip_distance",
	"rate_code",
	"store_and_fwd_flag",
	"pu_location_id",
	"do_location_id",
	"payment_type",
	"fare_amount",
	"extra",
	"mta_tax",
	"tip_amount",
	"tolls_amount",
	"improvement_surcharge",
	"total_amount",
	"index",
}

// Trip - Represents one parsed row of the trip dataset.
// Timestamps are kept as raw text, identifiers are opaque strings.
type Trip struct {
	Index                string  `json:"index" cbor:"1,keyasint"`
	VendorID             string  `json:"vendor_id" cbor:"2,keyasint"`
	PickupDatetime       string  `json:"pickup_datetime" cbor:"3,keyasint"`
	DropoffDatetime      string  `json:"dropoff_datetime" cbor:"4,keyasint"`
	PassengerCount       uint32  `json:"passenger_count" cbor:"5,keyasint"`
	TripDistance         float64 `json:"trip_distance" cbor:"6,keyasint"`
	RateCode             string  `json:"rate_code" cbor:"7,keyasint"`
	StoreAndFwdFlag      string  `json:"store_and_fwd_flag" cbor:"8,keyasint"`
	PULocationID         string  `json:"pu_location_id" cbor:"9,keyasint"`
	DOLocationID         string  `json:"do_location_id" cbor:"10,keyasint"`
	PaymentType          string  `json:"payment_type" cbor:"11,keyasint"`
	FareAmount           float64 `json:"fare_amount" cbor:"12,keyasint"`
	Extra                float64 `json:"extra" cbor:"13,keyasint"`
	MTATax               float64 `json:"mta_tax" cbor:"14,keyasint"`
	TipAmount            float64 `json:"tip_amount" cbor:"15,keyasint"`
	TollsAmount          float64 `json:"tolls_amount" cbor:"16,keyasint"`
	ImprovementSurcharge float64 `json:"improvement_surcharge" cbor:"17,keyasint"`
	TotalAmount          float64 `json:"total_amount" cbor:"18,keyasint"`
}

// TripEntry - The persisted form of one trip inside a bucket
type TripEntry struct {
	Key  string `json:"key" cbor:"1,keyasint"`
	Trip Trip   `json:"trip" cbor:"2,keyasint"`
}

// FromRow - Builds a Trip from the fields of one input row.
// Numeric fields that can't be parsed, or parse to Inf or NaN, default to zero, the row is still returned. Callers must make
// sure the row holds at least NumberOfColumns fields.
//   - row is the split input row in canonical column order
//
// It returns:
//   - trip is the parsed Trip
//   - defaulted is the number of numeric fields that were replaced by zero
func FromRow(row []string) (trip Trip, defaulted int) {
	parseFloat := func(s string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			defaulted++
			return 0
		}
		return v
	}
	parseMoney := func(s string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			defaulted++
			return 0
		}
		return v
	}

	var passengers uint32
	if p, err := strconv.ParseUint(strings.TrimSpace(row[3]), 10, 32); err == nil {
		passengers = uint32(p)
	} else {
		defaulted++
	}

	trip = Trip{
		VendorID:             row[0],
		PickupDatetime:       row[1],
		DropoffDatetime:      row[2],
		PassengerCount:       passengers,
		TripDistance:         parseFloat(row[4]),
		RateCode:             row[5],
		StoreAndFwdFlag:      row[6],
		PULocationID:         row[7],
		DOLocationID:         row[8],
		PaymentType:          row[9],
		FareAmount:           parseMoney(row[10]),
		Extra:                parseMoney(row[11]),
		MTATax:               parseMoney(row[12]),
		TipAmount:            parseMoney(row[13]),
		TollsAmount:          parseMoney(row[14]),
		ImprovementSurcharge: parseMoney(row[15]),
		TotalAmount:          parseMoney(row[16]),
		Index:                strings.TrimSpace(row[17]),
	}

	return
}

// ToRow - Returns the trip as fields in canonical column order, the inverse of FromRow
func (T Trip) ToRow() (row []string) {
	formatFloat := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

	row = []string{
		T.VendorID,
		T.PickupDatetime,
		T.DropoffDatetime,
		strconv.FormatUint(uint64(T.PassengerCount), 10),
		formatFloat(T.TripDistance),
		T.RateCode,
		T.StoreAndFwdFlag,
		T.PULocationID,
		T.DOLocationID,
		T.PaymentType,
		formatFloat(T.FareAmount),
		formatFloat(T.Extra),
		formatFloat(T.MTATax),
		formatFloat(T.TipAmount),
		formatFloat(T.TollsAmount),
		formatFloat(T.ImprovementSurcharge),
		formatFloat(T.TotalAmount),
		T.Index,
	}

	return
}

// Header - Returns the header row written at the start of filtered output files
func Header() []string {
	h := make([]string, NumberOfColumns)
	copy(h, Columns[:])
	return h
}
