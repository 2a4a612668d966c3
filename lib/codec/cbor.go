// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Column blocks hold one array element per row and one map pair per
// nested record field, so the decoder's container limits are raised
// from the library defaults (131072 elements) to the format maximum.
// A batch_size above the default would otherwise write files that
// cannot be read back.
const maxContainerLength = math.MaxInt32

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Core Deterministic Encoding keeps floats in a float major type
	// even when integral (2.0 stays 2.0, shortest width), so the
	// integer/float distinction of record numbers survives a round trip.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Nested record maps decode into any. Without a string-keyed
		// default the decoder yields map[interface{}]interface{}, which
		// record.ValueOf rejects.
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxArrayElements: maxContainerLength,
		MaxMapPairs:      maxContainerLength,
		// Record text is UTF-8 by construction; anything else is a
		// corrupt file, not data.
		UTF8: cbor.UTF8RejectInvalid,
		// Positive integers decode as uint64 and negative as int64;
		// record.ValueOf narrows both to the integer kind.
		IntDec: cbor.IntDecConvertNone,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encoder writes column blocks. Alias so callers import only
// lib/codec.
type Encoder = cbor.Encoder

// Decoder reads column blocks.
type Decoder = cbor.Decoder

// NewEncoder returns a deterministic CBOR encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR decoder reading column blocks from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}
