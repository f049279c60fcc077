// Package bolt adapts go.etcd.io/bbolt as a persistent, single-process
// cacheman engine.
//
// Layout per value: 8 bytes big endian expiresAt (unix nanos, 0 = never) || raw value.
// Expired entries are reported as misses until overwritten or removed by Sweep.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/appleboy/cacheman-promise/engine"
)

const headerLen = 8

var ErrCorruptRecord = errors.New("bolt engine: corrupt record")

type Engine struct {
	db      *bolt.DB
	bucket  []byte
	closeDB bool
	now     func() time.Time
}

var _ engine.Engine = (*Engine)(nil)

type Config struct {
	// Path of the database file. Ignored when DB is set.
	Path string
	// DB lets callers share an already opened database; it is not closed by Close.
	DB *bolt.DB
	// Bucket is the Bolt bucket to use. Defaults to "cacheman".
	Bucket string
	// OpenTimeout bounds waiting for the file lock. Defaults to 1s.
	OpenTimeout time.Duration
}

func Open(cfg Config) (*Engine, error) {
	bucket := []byte("cacheman")
	if cfg.Bucket != "" {
		bucket = []byte(cfg.Bucket)
	}
	db, owned := cfg.DB, false
	if db == nil {
		if cfg.Path == "" {
			return nil, errors.New("bolt engine: path is required")
		}
		timeout := cfg.OpenTimeout
		if timeout <= 0 {
			timeout = time.Second
		}
		var err error
		db, err = bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: timeout})
		if err != nil {
			return nil, err
		}
		owned = true
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		if owned {
			_ = db.Close()
		}
		return nil, err
	}
	return &Engine{db: db, bucket: bucket, closeDB: owned, now: time.Now}, nil
}

func (e *Engine) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(e.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		if len(v) < headerLen {
			return ErrCorruptRecord
		}
		if e.expired(v) {
			return nil
		}
		// bolt memory is only valid inside the transaction
		out = append([]byte{}, v[headerLen:]...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

func (e *Engine) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = e.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, headerLen+len(value))
	binary.BigEndian.PutUint64(buf[:headerLen], uint64(expiresAt))
	copy(buf[headerLen:], value)

	err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(e.bucket).Put([]byte(key), buf)
	})
	return err == nil, err
}

func (e *Engine) Del(_ context.Context, key string) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(e.bucket).Delete([]byte(key))
	})
}

// Clear deletes every key under prefix.
func (e *Engine) Clear(_ context.Context, prefix string) error {
	p := []byte(prefix)
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(e.bucket)
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, append([]byte{}, k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Sweep removes expired records. Bolt has no background expiry; callers
// that keep long-lived files may run this periodically.
func (e *Engine) Sweep(_ context.Context) (int, error) {
	removed := 0
	err := e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(e.bucket)
		var dead [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if len(v) < headerLen || e.expired(v) {
				dead = append(dead, append([]byte{}, k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range dead {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(dead)
		return nil
	})
	return removed, err
}

func (e *Engine) Close(_ context.Context) error {
	if e == nil || e.db == nil || !e.closeDB {
		return nil
	}
	return e.db.Close()
}

func (e *Engine) expired(v []byte) bool {
	exp := int64(binary.BigEndian.Uint64(v[:headerLen]))
	return exp > 0 && e.now().UnixNano() > exp
}
