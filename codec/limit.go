package codec

import "fmt"

// Limit wraps another codec and rejects payloads larger than Max bytes, both
// when decoding (protects the producer from oversized upstream blobs) and when
// encoding (keeps shards under a store's entry size limit).
// Max <= 0 disables the check.
type Limit[R any] struct {
	Inner Codec[R]
	Max   int
}

func (c Limit[R]) Encode(r R) ([]byte, error) {
	b, err := c.Inner.Encode(r)
	if err != nil {
		return nil, err
	}
	if c.Max > 0 && len(b) > c.Max {
		return nil, fmt.Errorf("%w: encoded %d > %d", ErrTooLarge, len(b), c.Max)
	}
	return b, nil
}

func (c Limit[R]) Decode(b []byte) (R, error) {
	if c.Max > 0 && len(b) > c.Max {
		var zero R
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.Max)
	}
	return c.Inner.Decode(b)
}
