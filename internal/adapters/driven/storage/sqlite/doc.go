// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Each record stores the document text, its metadata as JSON and its
// embedding as a little-endian float32 blob. Queries scan the collection and
// rank by cosine distance in Go, which is fast enough for the few thousand
// rows of the NISR tables.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. The collections table records the embedding model and dimension
// of each collection's first write.
//
// # Data Location
//
// By default, the database is stored at ./vectordb/vectors.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode.
package sqlite
