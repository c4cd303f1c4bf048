package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

const (
	version    byte = 1
	kindRecord byte = 1
	kindShard  byte = 2

	recordHdr = 4 + 1 + 1 + 4     // magic | ver | kind | vlen
	shardHdr  = 4 + 1 + 1 + 8 + 4 // magic | ver | kind | seq | n
)

var (
	ErrCorrupt  = errors.New("replaycache: corrupt shard")
	ErrTooLarge = errors.New("replaycache: shard payload exceeds frame limits")
	magic4      = [...]byte{'R', 'P', 'L', 'Y'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

func header(buf *bytes.Buffer, kind byte) {
	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)
}

func putU32(buf *bytes.Buffer, v uint32) {
	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], v)
	buf.Write(u4[:])
}

// Record: magic(4) | ver(1) | kind(1=record) | vlen(u32 be) | payload(vlen)
func EncodeRecord(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}
	var buf bytes.Buffer
	buf.Grow(recordHdr + len(payload))
	header(&buf, kindRecord)
	putU32(&buf, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes(), nil
}

// DecodeRecord returns a subslice of b (zero-copy). Trailing bytes are corruption.
func DecodeRecord(b []byte) ([]byte, error) {
	if len(b) < recordHdr || !hasMagic(b) || b[4] != version || b[5] != kindRecord {
		return nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[6:10]))
	if vlen != len(b)-recordHdr {
		return nil, ErrCorrupt
	}
	return b[recordHdr:], nil
}

// Shard:
//
//	magic(4) | ver(1) | kind(2=shard) | seq(u64 be) | n(u32 be)
//	vlen(u32 be) | payload(vlen) * n
//
// seq is an opaque producer-assigned sequence number (e.g. shard index).
func EncodeShard(seq uint64, payloads [][]byte) ([]byte, error) {
	if uint64(len(payloads)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}
	total := shardHdr
	for _, p := range payloads {
		if uint64(len(p)) > math.MaxUint32 {
			return nil, ErrTooLarge
		}
		total += 4 + len(p)
	}

	var buf bytes.Buffer
	buf.Grow(total)
	header(&buf, kindShard)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], seq)
	buf.Write(u8[:])
	putU32(&buf, uint32(len(payloads)))

	for _, p := range payloads {
		putU32(&buf, uint32(len(p)))
		buf.Write(p)
	}
	return buf.Bytes(), nil
}

// DecodeShard returns the sequence number and payload subslices of b (zero-copy).
func DecodeShard(b []byte) (seq uint64, payloads [][]byte, err error) {
	if len(b) < shardHdr || !hasMagic(b) || b[4] != version || b[5] != kindShard {
		return 0, nil, ErrCorrupt
	}
	off := 6
	seq = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// every payload costs at least its 4-byte length; bound n before allocating
	if n < 0 || n > (len(b)-off)/4 {
		return 0, nil, ErrCorrupt
	}

	payloads = make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if off+4 > len(b) {
			return 0, nil, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off {
			return 0, nil, ErrCorrupt
		}
		payloads = append(payloads, b[off:off+vlen])
		off += vlen
	}
	if off != len(b) {
		return 0, nil, ErrCorrupt
	}
	return seq, payloads, nil
}

// Decode accepts either frame kind and returns its payloads.
func Decode(b []byte) ([][]byte, error) {
	if len(b) < 6 || !hasMagic(b) || b[4] != version {
		return nil, ErrCorrupt
	}
	switch b[5] {
	case kindRecord:
		p, err := DecodeRecord(b)
		if err != nil {
			return nil, err
		}
		return [][]byte{p}, nil
	case kindShard:
		_, ps, err := DecodeShard(b)
		return ps, err
	default:
		return nil, ErrCorrupt
	}
}
