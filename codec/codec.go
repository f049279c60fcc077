// Package codec turns caller values into the bytes an engine stores.
//
// Codecs never represent absence: cacheman frames a nil value separately, so
// Encode is only called for present values.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
