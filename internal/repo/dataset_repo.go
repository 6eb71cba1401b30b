package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/datachat/internal/model"
	"github.com/xxxsen/datachat/internal/pkg/dbutil"
	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

var datasetFields = []string{"name", "index_name", "system_prompt", "state", "created_at"}

// DatasetRepo is the durable dataset registry: name → index identity,
// system prompt and delete state. Every storage fault surfaces as a
// RegistryError; not-found is reported separately.
type DatasetRepo struct {
	db *sql.DB
}

func NewDatasetRepo(db *sql.DB) *DatasetRepo {
	return &DatasetRepo{db: db}
}

// Upsert inserts or replaces the row keyed by name. index_name is written as
// given; callers derive it deterministically from the name so concurrent
// upserts of the same dataset always agree on it.
func (r *DatasetRepo) Upsert(ctx context.Context, dataset *model.Dataset) error {
	const query = `
		INSERT INTO datasets (name, index_name, system_prompt, state, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			system_prompt = EXCLUDED.system_prompt,
			state = EXCLUDED.state,
			created_at = EXCLUDED.created_at
	`
	createdAt := dataset.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	_, err := r.db.ExecContext(ctx, query,
		dataset.Name,
		dataset.IndexName,
		dataset.SystemPrompt,
		dataset.State,
		createdAt,
	)
	if err != nil {
		return appErr.NewRegistryError("upsert", err)
	}
	return nil
}

func (r *DatasetRepo) Get(ctx context.Context, name string) (*model.Dataset, error) {
	where := map[string]interface{}{
		"name": name,
	}
	sqlStr, args, err := builder.BuildSelect("datasets", where, datasetFields)
	if err != nil {
		return nil, appErr.NewRegistryError("get", err)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var item model.Dataset
	if err := row.Scan(&item.Name, &item.IndexName, &item.SystemPrompt, &item.State, &item.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrDatasetNotFound
		}
		return nil, appErr.NewRegistryError("get", err)
	}
	return &item, nil
}

func (r *DatasetRepo) List(ctx context.Context) (map[string]*model.Dataset, error) {
	sqlStr, args, err := builder.BuildSelect("datasets", nil, datasetFields)
	if err != nil {
		return nil, appErr.NewRegistryError("list", err)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, appErr.NewRegistryError("list", err)
	}
	defer rows.Close()
	results := make(map[string]*model.Dataset)
	for rows.Next() {
		var item model.Dataset
		if err := rows.Scan(&item.Name, &item.IndexName, &item.SystemPrompt, &item.State, &item.CreatedAt); err != nil {
			return nil, appErr.NewRegistryError("list", err)
		}
		results[item.Name] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, appErr.NewRegistryError("list", err)
	}
	return results, nil
}

func (r *DatasetRepo) ListByState(ctx context.Context, state string) ([]*model.Dataset, error) {
	where := map[string]interface{}{
		"state": state,
	}
	sqlStr, args, err := builder.BuildSelect("datasets", where, datasetFields)
	if err != nil {
		return nil, appErr.NewRegistryError("list_by_state", err)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, appErr.NewRegistryError("list_by_state", err)
	}
	defer rows.Close()
	var results []*model.Dataset
	for rows.Next() {
		var item model.Dataset
		if err := rows.Scan(&item.Name, &item.IndexName, &item.SystemPrompt, &item.State, &item.CreatedAt); err != nil {
			return nil, appErr.NewRegistryError("list_by_state", err)
		}
		results = append(results, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, appErr.NewRegistryError("list_by_state", err)
	}
	return results, nil
}

func (r *DatasetRepo) SetState(ctx context.Context, name string, state string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE datasets SET state = $1 WHERE name = $2`, state, name)
	if err != nil {
		return appErr.NewRegistryError("set_state", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return appErr.NewRegistryError("set_state", err)
	}
	if affected == 0 {
		return appErr.ErrDatasetNotFound
	}
	return nil
}

// Delete removes the row and reports whether it existed. It does not touch
// the vector index; that ordering belongs to the orchestrator.
func (r *DatasetRepo) Delete(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = $1`, name)
	if err != nil {
		return false, appErr.NewRegistryError("delete", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, appErr.NewRegistryError("delete", err)
	}
	return affected > 0, nil
}
