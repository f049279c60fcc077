package codec

// Bytes is an identity codec for []byte values.
// A nil slice is stored as null and reads back absent; an empty slice is a value.
// Decode copies, so callers may modify what they get back.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) {
	return append([]byte{}, b...), nil
}

// String stores Go strings as their UTF-8 bytes, without validation.
// The empty string is a present value.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
