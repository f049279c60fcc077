package cacheman

import "time"

const (
	defaultPrefix            = "cacheman"
	defaultNamespace         = "cache"
	defaultDelimiter         = ":"
	defaultTTL               = 60 * time.Second
	defaultBackgroundTimeout = 5 * time.Second
)

// NoExpiration as a ttl stores the entry without expiry.
const NoExpiration time.Duration = -1

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
