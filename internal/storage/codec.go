package storage

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/gostonefire/tripindex/model"
)

// Codec names accepted by CodecByName
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Codec - Serializes a whole bucket entry list to and from a stream
type Codec interface {
	// Name - Returns the name stored in the table manifest
	Name() string
	// Extension - Returns the file extension used for bucket files
	Extension() string
	// Encode - Writes the full entry list to w
	Encode(w io.Writer, entries []model.TripEntry) error
	// Decode - Reads a full entry list from r
	Decode(r io.Reader) ([]model.TripEntry, error)
}

// CodecByName - Returns the codec registered under name, an empty name gives the JSON codec
func CodecByName(name string) (codec Codec, err error) {
	switch name {
	case "", CodecJSON:
		codec = JSONCodec{}
	case CodecCBOR:
		codec, err = NewCBORCodec()
	default:
		err = fmt.Errorf("unknown bucket codec %q", name)
	}

	return
}

// JSONCodec - Stores buckets as a JSON array of entries
type JSONCodec struct{}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func (JSONCodec) Name() string      { return CodecJSON }
func (JSONCodec) Extension() string { return "json" }

func (JSONCodec) Encode(w io.Writer, entries []model.TripEntry) error {
	stream := jsonAPI.BorrowStream(w)
	defer jsonAPI.ReturnStream(stream)

	stream.WriteVal(entries)
	if stream.Error != nil {
		return stream.Error
	}
	return stream.Flush()
}

func (JSONCodec) Decode(r io.Reader) (entries []model.TripEntry, err error) {
	err = jsonAPI.NewDecoder(r).Decode(&entries)
	return
}

// CBORCodec - Stores buckets as a CBOR array of entries, smaller and faster to decode than JSON
type CBORCodec struct {
	em cbor.EncMode
	dm cbor.DecMode
}

// NewCBORCodec - Returns a CBOR codec with deterministic encoding
func NewCBORCodec() (codec *CBORCodec, err error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		err = fmt.Errorf("create CBOR encoder: %w", err)
		return
	}
	dm, err := cbor.DecOptions{MaxArrayElements: 1 << 27}.DecMode()
	if err != nil {
		err = fmt.Errorf("create CBOR decoder: %w", err)
		return
	}

	codec = &CBORCodec{em: em, dm: dm}

	return
}

func (C *CBORCodec) Name() string      { return CodecCBOR }
func (C *CBORCodec) Extension() string { return "cbor" }

func (C *CBORCodec) Encode(w io.Writer, entries []model.TripEntry) error {
	return C.em.NewEncoder(w).Encode(entries)
}

func (C *CBORCodec) Decode(r io.Reader) (entries []model.TripEntry, err error) {
	err = C.dm.NewDecoder(r).Decode(&entries)
	return
}
