package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type item struct {
	ID    string    `json:"id" msgpack:"id" cbor:"id"`
	Count int       `json:"count" msgpack:"count" cbor:"count"`
	At    time.Time `json:"at" msgpack:"at" cbor:"at"`
}

func roundTrip[V any](t *testing.T, c Codec[V], v V) V {
	t.Helper()
	b, err := c.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestStructCodecs(t *testing.T) {
	v := item{ID: "a", Count: 3, At: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	codecs := map[string]Codec[item]{
		"json":     JSON[item]{},
		"msgpack":  Msgpack[item]{},
		"cbor":     MustCBOR[item](false),
		"cbor-det": MustCBOR[item](true),
	}
	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			got := roundTrip(t, c, v)
			if got.ID != v.ID || got.Count != v.Count || !got.At.Equal(v.At) {
				t.Fatalf("got %+v want %+v", got, v)
			}
		})
	}
}

// Zero values must survive every codec unchanged: they are present values.
func TestZeroValuesSurvive(t *testing.T) {
	if got := roundTrip[int](t, JSON[int]{}, 0); got != 0 {
		t.Fatalf("json int zero: %d", got)
	}
	if got := roundTrip[bool](t, Msgpack[bool]{}, false); got {
		t.Fatalf("msgpack false: %v", got)
	}
	if got := roundTrip[string](t, MustCBOR[string](false), ""); got != "" {
		t.Fatalf("cbor empty string: %q", got)
	}
	if got := roundTrip[string](t, String{}, ""); got != "" {
		t.Fatalf("string codec empty: %q", got)
	}
	if got := roundTrip[[]byte](t, Bytes{}, []byte{}); got == nil || len(got) != 0 {
		t.Fatalf("bytes codec empty: %v", got)
	}
}

func TestBytesDecodeCopies(t *testing.T) {
	src := []byte("abc")
	got, err := Bytes{}.Decode(src)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got[0] = 'X'
	if string(src) != "abc" {
		t.Fatalf("Decode must not alias its input, src=%q", src)
	}
}

func TestCBORDeterministic(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := c.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := c.Encode(m)
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding differs between runs")
		}
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	got := roundTrip[*wrapperspb.StringValue](t, c, wrapperspb.String("hello"))
	if !proto.Equal(got, wrapperspb.String("hello")) {
		t.Fatalf("got %v", got)
	}
}

func TestLimitCodec(t *testing.T) {
	c := LimitCodec[string]{Inner: String{}, MaxDecode: 4}
	if _, err := c.Decode([]byte("12345")); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}
	if got, err := c.Decode([]byte("1234")); err != nil || got != "1234" {
		t.Fatalf("boundary decode: %q %v", got, err)
	}

	unlimited := LimitCodec[string]{Inner: String{}}
	if _, err := unlimited.Decode([]byte(strings.Repeat("x", 1<<16))); err != nil {
		t.Fatalf("MaxDecode=0 should disable the limit: %v", err)
	}
}
