package util

import (
	"reflect"
	"testing"
)

func TestKeyspace(t *testing.T) {
	ks := NewKeyspace("cacheman", "user", ":")
	if got := ks.Key("42"); got != "cacheman:user:42" {
		t.Fatalf("Key: got %q", got)
	}
	if got := ks.Prefix(); got != "cacheman:user:" {
		t.Fatalf("Prefix: got %q", got)
	}

	noPrefix := NewKeyspace("", "user", "/")
	if got := noPrefix.Key("a"); got != "user/a" {
		t.Fatalf("Key without prefix: got %q", got)
	}
}

func TestUniqKeepsOrderAndInput(t *testing.T) {
	in := []string{"b", "a", "b", "c", "a"}
	cp := append([]string(nil), in...)

	got := Uniq(in)
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Uniq: got %v want %v", got, want)
	}
	if !reflect.DeepEqual(in, cp) {
		t.Fatalf("Uniq mutated input: %v", in)
	}
	if len(Uniq(nil)) != 0 {
		t.Fatalf("Uniq(nil) should be empty")
	}
}

func TestRedactStable(t *testing.T) {
	a, b := Redact("k"), Redact("k")
	if a != b || len(a) != 16 {
		t.Fatalf("Redact: %q %q", a, b)
	}
	if Redact("k") == Redact("j") {
		t.Fatalf("Redact collided on distinct keys")
	}
}
