package codec

import (
	"bytes"
	"errors"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type sample struct {
	ID       string             `json:"id" cbor:"id" msgpack:"id"`
	Label    int                `json:"label" cbor:"label" msgpack:"label"`
	Features map[string]float64 `json:"features" cbor:"features" msgpack:"features"`
}

func roundTrip[R any](t *testing.T, name string, c Codec[R], in R, eq func(a, b R) bool) {
	t.Helper()
	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("%s encode: %v", name, err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("%s decode: %v", name, err)
	}
	if !eq(in, out) {
		t.Fatalf("%s round trip mismatch: %+v != %+v", name, in, out)
	}
}

func sameSample(a, b sample) bool {
	if a.ID != b.ID || a.Label != b.Label || len(a.Features) != len(b.Features) {
		return false
	}
	for k, v := range a.Features {
		if b.Features[k] != v {
			return false
		}
	}
	return true
}

func TestStructCodecsRoundTrip(t *testing.T) {
	in := sample{ID: "img-17", Label: 3, Features: map[string]float64{"w": 0.5, "h": 1.25}}

	roundTrip[sample](t, "json", JSON[sample]{}, in, sameSample)
	roundTrip[sample](t, "msgpack", Msgpack[sample]{}, in, sameSample)
	roundTrip[sample](t, "cbor", MustCBOR[sample](false), in, sameSample)
	roundTrip[sample](t, "cbor-det", MustCBOR[sample](true), in, sameSample)
}

func TestCBORDeterministicIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	m := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}
	first, err := c.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		b, _ := c.Encode(m)
		if !bytes.Equal(first, b) {
			t.Fatalf("deterministic encoding changed between calls")
		}
	}
}

func TestProtobufRoundTrip(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	roundTrip[*wrapperspb.StringValue](t, "protobuf", c, wrapperspb.String("hello"),
		func(a, b *wrapperspb.StringValue) bool { return proto.Equal(a, b) })

	if _, err := c.Decode([]byte{0xff, 0xff}); err == nil {
		t.Fatalf("expected error decoding garbage")
	}
}

func TestRawCodecs(t *testing.T) {
	roundTrip[[]byte](t, "bytes", Bytes{}, []byte{1, 2, 3}, bytes.Equal)
	roundTrip[string](t, "string", String{}, "héllo", func(a, b string) bool { return a == b })
}

func TestLimit(t *testing.T) {
	c := Limit[string]{Inner: String{}, Max: 4}

	if _, err := c.Encode("abcd"); err != nil {
		t.Fatalf("at limit: %v", err)
	}
	if _, err := c.Encode("abcde"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("encode over limit: got %v", err)
	}
	if _, err := c.Decode([]byte("abcde")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("decode over limit: got %v", err)
	}

	off := Limit[string]{Inner: String{}}
	if _, err := off.Encode("no limit at all"); err != nil {
		t.Fatalf("Max=0 disables the check: %v", err)
	}
}
