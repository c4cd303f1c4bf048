package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR is a Codec that serializes records using fxamacker/cbor.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
//
// deterministic=true selects Core Deterministic Encoding (RFC 8949), useful when
// shard bytes are hashed or compared. Otherwise PreferredUnsortedEncOptions.
type CBOR[R any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[R any](deterministic bool) (CBOR[R], error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[R]{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR[R]{}, err
	}
	return CBOR[R]{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error. Meant for tests and package-level vars.
func MustCBOR[R any](deterministic bool) CBOR[R] {
	c, err := NewCBOR[R](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[R]) Encode(r R) ([]byte, error) {
	return c.enc.Marshal(r)
}

func (c CBOR[R]) Decode(b []byte) (R, error) {
	var r R
	err := c.dec.Unmarshal(b, &r)
	return r, err
}
