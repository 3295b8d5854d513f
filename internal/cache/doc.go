// Package cache implements the per-resource request store: cached responses
// with optional expiry plus coalescing of in-flight fetches, so that concurrent
// callers asking for the same key trigger a single upstream request.
// The store knows nothing about URLs or HTTP; managers hand it a key and a
// fetch callback and decide per call whether the cache may be read or written.
package cache
