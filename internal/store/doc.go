// Package store provides SQLite-backed storage for union documents.
//
// Each record holds one envelope under a unique key:
//   - doc: the envelope as a BSON document, optionally brotli-compressed
//   - type_id: the envelope's "type" identifier, for listing and filtering
//   - content_hash: SHA-256 over the envelope's canonical JSON (RFC 8785)
//     with the "oneof/envelope/v1" domain prefix
//   - seq: logical write counter; List orders by seq, then key
//
// Record IDs are name-based UUIDs derived from the key, so the same key
// always maps to the same ID across databases.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
