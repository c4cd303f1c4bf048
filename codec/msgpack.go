package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is a Codec that serializes records using vmihailenco/msgpack/v5.
// The zero value is ready to use. Compact for numeric-heavy records such as
// map[string][]float32 feature maps.
type Msgpack[R any] struct{}

func (Msgpack[R]) Encode(r R) ([]byte, error) {
	return msgpack.Marshal(r)
}
func (Msgpack[R]) Decode(b []byte) (R, error) {
	var r R
	err := msgpack.Unmarshal(b, &r)
	return r, err
}
