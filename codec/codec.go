// Package codec converts records to and from bytes for sources that read
// serialized data (see source.Shards). The replay cache itself never encodes.
package codec

import (
	"errors"
)

// Codec encodes/decodes records R to []byte.
type Codec[R any] interface {
	Encode(R) ([]byte, error)
	Decode([]byte) (R, error)
}

var ErrTooLarge = errors.New("codec: payload too large")
