package codec

import "encoding/json"

// JSON is a Codec backed by encoding/json. The zero value is ready to use.
type JSON[R any] struct{}

func (JSON[R]) Encode(r R) ([]byte, error) { return json.Marshal(r) }
func (JSON[R]) Decode(b []byte) (R, error) {
	var r R
	err := json.Unmarshal(b, &r)
	return r, err
}
