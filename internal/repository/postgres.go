package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// isUUID reports whether id can be bound to a UUID column. Any other
// value cannot match a row.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}

// whereClause accumulates numbered SQL conditions and their arguments
type whereClause struct {
	conditions []string
	args       []any
}

func (w *whereClause) add(format string, value any) {
	w.args = append(w.args, value)
	w.conditions = append(w.conditions, fmt.Sprintf(format, len(w.args)))
}

// addID compares a UUID column. A malformed id matches nothing.
func (w *whereClause) addID(format string, id string) {
	if !isUUID(id) {
		w.addRaw("FALSE")
		return
	}
	w.add(format, id)
}

func (w *whereClause) addRaw(condition string) {
	w.conditions = append(w.conditions, condition)
}

func (w *whereClause) String() string {
	if len(w.conditions) == 0 {
		return "TRUE"
	}
	return strings.Join(w.conditions, " AND ")
}

// page appends LIMIT and OFFSET placeholders for the next two arguments
func (w *whereClause) page(limit, offset int) (string, []any) {
	n := len(w.args)
	args := append(append([]any{}, w.args...), limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", n+1, n+2), args
}
