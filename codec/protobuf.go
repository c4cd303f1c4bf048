package codec

import "google.golang.org/protobuf/proto"

// Protobuf encodes proto messages. ctor must return a fresh, non-nil message,
// e.g. func() *pb.Sample { return &pb.Sample{} }.
type Protobuf[M proto.Message] struct {
	ctor func() M
}

func NewProtobuf[M proto.Message](ctor func() M) Protobuf[M] {
	return Protobuf[M]{ctor: ctor}
}

func (c Protobuf[M]) Encode(m M) ([]byte, error) {
	return proto.Marshal(m)
}

func (c Protobuf[M]) Decode(b []byte) (M, error) {
	m := c.ctor()
	err := proto.Unmarshal(b, m)
	return m, err
}
