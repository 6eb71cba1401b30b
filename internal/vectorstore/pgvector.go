package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

// PgvectorStore keeps all indexes in two tables: a catalog row per index in
// vector_indexes and the records themselves in vector_records. Search is a
// cosine-distance order-by; pgvector does the heavy lifting.
type PgvectorStore struct {
	db *sql.DB
}

func NewPgvectorStore(db *sql.DB) *PgvectorStore {
	return &PgvectorStore{db: db}
}

func (s *PgvectorStore) EnsureIndex(ctx context.Context, index string, dimension int, metric string) error {
	found, err := s.matchIndexParams(ctx, index, dimension, metric)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	const insert = `
		INSERT INTO vector_indexes (index_name, dimension, metric, ctime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (index_name) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, insert, index, dimension, metric, time.Now().Unix())
	if err != nil {
		return appErr.NewVectorStoreError("ensure_index", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return appErr.NewVectorStoreError("ensure_index", err)
	}
	if affected == 0 {
		// lost a concurrent create; the winner's parameters must still match
		found, err := s.matchIndexParams(ctx, index, dimension, metric)
		if err != nil {
			return err
		}
		if !found {
			return appErr.NewVectorStoreError("ensure_index",
				fmt.Errorf("index %s disappeared during create", index))
		}
	}
	return nil
}

// matchIndexParams reports whether the catalog row exists, erroring when it
// exists with different parameters.
func (s *PgvectorStore) matchIndexParams(ctx context.Context, index string, dimension int, metric string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT dimension, metric FROM vector_indexes WHERE index_name = $1`, index)
	var existingDim int
	var existingMetric string
	err := row.Scan(&existingDim, &existingMetric)
	switch {
	case err == nil:
		if err := checkIndexParams(index, existingDim, existingMetric, dimension, metric); err != nil {
			return true, err
		}
		return true, nil
	case err == sql.ErrNoRows:
		return false, nil
	default:
		return false, appErr.NewVectorStoreError("ensure_index", err)
	}
}

func checkIndexParams(index string, haveDim int, haveMetric string, wantDim int, wantMetric string) error {
	if haveDim == wantDim && haveMetric == wantMetric {
		return nil
	}
	return appErr.NewVectorStoreError("ensure_index",
		fmt.Errorf("index %s exists with dimension=%d metric=%s, requested dimension=%d metric=%s",
			index, haveDim, haveMetric, wantDim, wantMetric))
}

func (s *PgvectorStore) Upsert(ctx context.Context, index string, records []Record) error {
	const query = `
		INSERT INTO vector_records (index_name, id, embedding, metadata, mtime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (index_name, id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			mtime = EXCLUDED.mtime
	`
	now := time.Now().Unix()
	for _, record := range records {
		metadata, err := json.Marshal(record.Metadata)
		if err != nil {
			return appErr.NewVectorStoreError("upsert", err)
		}
		_, err = s.db.ExecContext(ctx, query,
			index,
			record.ID,
			pgvector.NewVector(record.Values),
			metadata,
			now,
		)
		if err != nil {
			return appErr.NewVectorStoreError("upsert", err)
		}
	}
	return nil
}

func (s *PgvectorStore) Search(ctx context.Context, index string, vector []float32, topK int) ([]map[string]interface{}, error) {
	exists, err := s.indexExists(ctx, index)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, appErr.NewVectorStoreError("search", fmt.Errorf("index %s not found", index))
	}
	const query = `
		SELECT metadata
		FROM vector_records
		WHERE index_name = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, index, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, appErr.NewVectorStoreError("search", err)
	}
	defer rows.Close()
	var results []map[string]interface{}
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, appErr.NewVectorStoreError("search", err)
		}
		var metadata map[string]interface{}
		if err := json.Unmarshal(blob, &metadata); err != nil {
			return nil, appErr.NewVectorStoreError("search", err)
		}
		results = append(results, metadata)
	}
	if err := rows.Err(); err != nil {
		return nil, appErr.NewVectorStoreError("search", err)
	}
	return results, nil
}

func (s *PgvectorStore) DeleteIndex(ctx context.Context, index string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vector_records WHERE index_name = $1`, index); err != nil {
		return appErr.NewVectorStoreError("delete_index", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vector_indexes WHERE index_name = $1`, index); err != nil {
		return appErr.NewVectorStoreError("delete_index", err)
	}
	return nil
}

func (s *PgvectorStore) indexExists(ctx context.Context, index string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM vector_indexes WHERE index_name = $1`, index)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, appErr.NewVectorStoreError("search", err)
	}
	return true, nil
}
