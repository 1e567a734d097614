package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/repository"
)

type scanner interface {
	Scan(dest ...any) error
}

// dateArg converts an optional civil date to a query argument.
func dateArg(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// dateFromNull converts a scanned DATE column back to a civil date.
func dateFromNull(nt sql.NullTime) *civil.Date {
	if !nt.Valid {
		return nil
	}
	d := civil.DateOf(nt.Time)
	return &d
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func jsonArg(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jsonb column: %w", err)
	}
	return b, nil
}

func now() time.Time {
	return time.Now().UTC()
}

// deleteByID removes one row from table and reports ErrNotFound when nothing
// matched.
func deleteByID(ctx context.Context, db *sql.DB, table string, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s row %d: %w", table, id, repository.ErrNotFound)
	}
	return nil
}
