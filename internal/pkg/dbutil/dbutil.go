package dbutil

import (
	"github.com/jmoiron/sqlx"
)

// Finalize rebinds a gendry-built query (`?` placeholders) to the postgres
// dollar form expected by lib/pq.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}
