// Package pgvector provides a PostgreSQL implementation of driven.VectorStore
// using the pgvector extension.
//
// Records live in the ubuzima_records table with a vector column. Nearest
// neighbours are ranked by the <=> cosine distance operator, so ranking
// happens in the database rather than in Go. The schema is created on first
// connection and the vector extension is enabled if the role allows it.
package pgvector
