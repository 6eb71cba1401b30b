package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const MetricCosine = "cosine"

// Record is what survives of a document: its identifier, embedding and
// metadata, namespaced under one dataset's index.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]interface{}
}

// Store abstracts the vector backend. Every fault is wrapped as a
// *errors.VectorStoreError; callers never match backend-specific types.
type Store interface {
	// EnsureIndex creates the index if absent. Calling it again with the
	// same parameters is a no-op; incompatible parameters are an error.
	EnsureIndex(ctx context.Context, index string, dimension int, metric string) error
	// Upsert bulk-writes records, overwriting on duplicate ID.
	Upsert(ctx context.Context, index string, records []Record) error
	// Search returns the metadata of the topK nearest records, best first.
	// Searching an unknown index is an error, not an empty result, so a
	// half-completed delete stays observable.
	Search(ctx context.Context, index string, vector []float32, topK int) ([]map[string]interface{}, error)
	// DeleteIndex drops the index and its records. Absent index is success
	// so a retried delete is safe.
	DeleteIndex(ctx context.Context, index string) error
}

// New selects a backend from the closed set of known implementations.
func New(storeType string, db *sql.DB) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(storeType)) {
	case "pgvector":
		if db == nil {
			return nil, fmt.Errorf("pgvector store requires a database")
		}
		return NewPgvectorStore(db), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", storeType)
	}
}
