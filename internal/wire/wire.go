package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindValue byte = 1
	kindNull  byte = 2

	hdrLen = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt = errors.New("cacheman: corrupt entry")
	magic4     = [...]byte{'C', 'M', 'A', 'N'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Frame: magic(4) | ver(1) | kind(1=value, 2=null) | vlen(u32 be) | payload(vlen)
//
// A null frame always has vlen=0. It records "stored, but nil" so that the
// codec never has to represent absence.
func EncodeValue(payload []byte) []byte {
	return encode(kindValue, payload)
}

func EncodeNull() []byte {
	return encode(kindNull, nil)
}

func encode(kind byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode returns the payload of a value frame, or isNull=true for a null
// frame. The payload aliases b. Trailing bytes are rejected.
func Decode(b []byte) (payload []byte, isNull bool, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return nil, false, ErrCorrupt
	}
	kind := b[5]
	if kind != kindValue && kind != kindNull {
		return nil, false, ErrCorrupt
	}

	off := 6
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact framing, overflow-safe
		return nil, false, ErrCorrupt
	}
	if kind == kindNull {
		if vlen != 0 {
			return nil, false, ErrCorrupt
		}
		return nil, true, nil
	}
	return b[off : off+vlen], false, nil
}
