// Package cacheman is a typed facade in front of a pluggable cache engine.
// It adds compute-or-fetch memoization (Wrap), batched reads (GetMany) and
// read-then-delete (Pull) on top of an engine's get/set/del/clear.
//
// Components:
//   - Engine: byte store with TTL (ristretto, bigcache, redis, bolt under engine/).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Async[V]: the same operations returning promise.Promise values, with
//     optional completion callbacks.
//
// Keys:
//
//	<prefix>:<namespace>:<key>   - defaults "cacheman" and "cache"
//
// Absence: only a missing, expired or nil-valued entry is absent. Zero values
// (0, false, "") are present and are returned as cache hits.
//
// Memoize pattern:
//
//	u, err := users.Wrap(ctx, "u:1", func(ctx context.Context) (User, error) {
//		return db.LoadUser(ctx, 1)
//	}, 0)
//
// Wrap and Pull wait for their write by default, so a following Get observes
// it. Options.BackgroundWrites moves the write off the caller's path. Two concurrent Wrap misses on one key may
// both run the loader; Options.CoalesceWraps collapses them within a process.
package cacheman
