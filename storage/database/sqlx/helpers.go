package sqlxrepos

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/jpcarvalho/diario/core"
)

// uniqueViolation is the postgres error code raised on duplicate keys.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a duplicate-key error; with a
// constraint name it only matches that constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// queryAll runs query and scans every row into dest (a pointer to a slice of
// structs with db tags).
func queryAll(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "querying")
	}
	defer func() { _ = rows.Close() }()
	return sqlx.StructScan(rows, dest)
}

// where joins conditions with AND; empty conditions yield an empty string so
// the query stays valid without a WHERE clause.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func arg(args *[]interface{}, v interface{}) string {
	*args = append(*args, v)
	return fmt.Sprintf("$%d", len(*args))
}
