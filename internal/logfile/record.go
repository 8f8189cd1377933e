// Package logfile implements the append-only, generation-numbered log that
// backs the Bitcask-style storage engine: record encoding, per-generation
// file handling, and the in-memory key directory built by replaying it.
package logfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/devraj-nair/kvcask/internal/kverrors"
)

// Record is the unit written to the log, in one of two variants on the
// wire: {"Set":["key","value"]} or {"Rm":"key"}. Exactly one of Set or Rm
// is populated.
type Record struct {
	Set *[2]string `json:"Set,omitempty"`
	Rm  *string    `json:"Rm,omitempty"`
}

// NewSet builds a Set record.
func NewSet(key, value string) Record {
	pair := [2]string{key, value}
	return Record{Set: &pair}
}

// NewRemove builds a Rm (tombstone) record.
func NewRemove(key string) Record {
	return Record{Rm: &key}
}

// IsSet reports whether the record is a Set variant.
func (r Record) IsSet() bool { return r.Set != nil }

// IsRemove reports whether the record is a Rm (tombstone) variant.
func (r Record) IsRemove() bool { return r.Rm != nil }

// Key returns the record's key regardless of variant.
func (r Record) Key() string {
	if r.Set != nil {
		return r.Set[0]
	}
	if r.Rm != nil {
		return *r.Rm
	}
	return ""
}

// Value returns the value of a Set record, or "" for a tombstone.
func (r Record) Value() string {
	if r.Set != nil {
		return r.Set[1]
	}
	return ""
}

// Encode serializes the record as a single JSON object followed by a
// newline. The newline is not required for correct decoding (the decoder
// is streaming and value-terminated) but is kept so the log reads as one
// record per line when inspected by hand.
func (r Record) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, kverrors.Wrap(kverrors.Serialization, "encode record", err)
	}
	data = append(data, '\n')
	return data, nil
}

// NewDecoder wraps r in a streaming JSON decoder. Reuse the same decoder
// for every record read sequentially from one file: decoder.InputOffset
// after each Decode call is the cumulative number of bytes consumed from
// r, which is the offset just past the closing brace of that record. The
// newline Encode appends is not consumed yet, so the next record starts
// one byte later; calling More first skips that whitespace, after which
// InputOffset is the next record's first byte. A fresh decoder per call
// would lose whatever the previous decoder had already buffered ahead
// from the underlying reader.
func NewDecoder(r io.Reader) *json.Decoder {
	return json.NewDecoder(r)
}

// DecodeOne decodes exactly one Record using dec, returning dec's
// cumulative InputOffset after the decode (the offset just past the
// decoded record's closing brace, before any trailing newline).
func DecodeOne(dec *json.Decoder) (Record, int64, error) {
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return Record{}, 0, io.EOF
		}
		return Record{}, 0, kverrors.Wrap(kverrors.Serialization, "decode record", err)
	}
	if !rec.IsSet() && !rec.IsRemove() {
		return Record{}, 0, kverrors.New(kverrors.Serialization, "record has neither Set nor Rm")
	}
	return rec, dec.InputOffset(), nil
}

// DecodeBytes decodes exactly one record from a byte slice that already
// holds it. ReadAt (and so the engine's Get) does not use it: ReadAt
// decodes straight from the file, starting at the recorded offset.
func DecodeBytes(data []byte) (Record, error) {
	rec, _, err := DecodeOne(NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return Record{}, fmt.Errorf("decode bytes: %w", err)
	}
	return rec, nil
}
