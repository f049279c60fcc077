package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyspace composes storage keys as prefix + delim + namespace + delim + key.
type Keyspace struct {
	root string // "prefix<delim>namespace<delim>"
}

func NewKeyspace(prefix, namespace, delim string) Keyspace {
	var b strings.Builder
	b.Grow(len(prefix) + len(namespace) + 2*len(delim))
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteString(delim)
	}
	b.WriteString(namespace)
	b.WriteString(delim)
	return Keyspace{root: b.String()}
}

// Key returns the storage key for a user key.
func (k Keyspace) Key(userKey string) string { return k.root + userKey }

// Prefix is the common prefix of every key in the keyspace.
func (k Keyspace) Prefix() string { return k.root }

// Uniq returns keys without duplicates, first occurrence order kept.
// The input is not mutated.
func Uniq(keys []string) []string {
	if len(keys) < 2 {
		return append([]string(nil), keys...)
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Redact returns a short, stable hex digest of a key (first 16 hex chars of SHA-256).
func Redact(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
