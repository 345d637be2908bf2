// Package cache implements the two-tier query result cache.
//
// Lookups check a fast in-memory LRU tier first (short TTL), then a
// durable on-disk tier (long TTL). Both tiers are written on Set; a
// disk hit repopulates the memory tier. An entry past its tier's TTL is
// reported as a miss regardless of physical presence.
//
// Per cache key the lifecycle is ABSENT -> FRESH -> STALE -> evicted.
//
// # Disk Tier
//
// Each entry is one self-contained JSON file carrying its payload and
// expiry metadata. Writes go to a temporary file in the cache directory
// and are renamed into place, so concurrent readers never observe torn
// content. A total size cap is enforced approximately by evicting the
// oldest entries first.
//
// # Failure Semantics
//
// Any disk I/O failure degrades to a cache miss or a dropped write with
// a logged warning. The cache is never a reason the retrieve operation
// fails: construction only errors on invalid options, and an
// uncreatable cache directory leaves the manager running memory-only.
package cache
