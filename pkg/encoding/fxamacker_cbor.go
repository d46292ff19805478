// Package encoding serializes chain objects to canonical CBOR. Canonical form
// matters here: message and block CIDs are hashes of these bytes, and two nodes
// must derive the same CID for the same message to agree on deduplication.
package encoding

import (
	"bytes"
	"io"

	cbor "github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CanonicalEncOptions().EncMode(); err != nil {
		// a panic here indicates a developer error in the options above.
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(err)
	}
}

type cborMarshalerStreamed interface {
	MarshalCBOR(io.Writer) error
}

type cborUnmarshalerStreamed interface {
	UnmarshalCBOR(io.Reader) error
}

// Encode returns the canonical CBOR encoding of obj.
func Encode(obj interface{}) ([]byte, error) {
	// check for object implementing cborMarshallerStreamed
	if m, ok := obj.(cborMarshalerStreamed); ok {
		var buf bytes.Buffer
		if err := m.MarshalCBOR(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return encMode.Marshal(obj)
}

// Decode decodes raw into obj, which must be a pointer.
func Decode(raw []byte, obj interface{}) error {
	// check for object implementing cborUnmarshallerStreamed
	if u, ok := obj.(cborUnmarshalerStreamed); ok {
		return u.UnmarshalCBOR(bytes.NewReader(raw))
	}
	return decMode.Unmarshal(raw, obj)
}
