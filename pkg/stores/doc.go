// Package stores provides the storage backends behind polocloud providers.
//
// MemoryStore keeps entities in process. SQLiteStore persists them in a
// single SQLite database with WAL mode and embedded migrations: every
// entity kind is a Table holding CBOR wire snapshots keyed by the provider
// key, and an event log keeps encoded event envelopes for replay and audit.
package stores
