package adapters

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Postgres error codes the engine interprets specially. Everything else is
// an operational failure.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// ConstraintKind classifies a constraint violation reported by the database.
type ConstraintKind int

const (
	// UniqueViolation is a collision on a unique column (name, email, isbn).
	UniqueViolation ConstraintKind = iota
	// ForeignKeyViolation is a delete blocked by referencing rows, or an
	// insert referencing a missing row.
	ForeignKeyViolation
)

// ConstraintViolation carries the classified violation. ConstraintName and
// TableName come from the driver; for a foreign-key violation on delete,
// TableName is the referencing table.
type ConstraintViolation struct {
	Kind           ConstraintKind
	ConstraintName string
	TableName      string
}

// ClassifyConstraint inspects a driver error and reports whether it is one of
// the two storage signals the engine translates into domain errors.
// It understands pgx (pgconn.PgError) and lib/pq (pq.Error) errors.
func ClassifyConstraint(err error) (ConstraintViolation, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		switch pgxErr.Code {
		case codeUniqueViolation:
			return ConstraintViolation{Kind: UniqueViolation, ConstraintName: pgxErr.ConstraintName, TableName: pgxErr.TableName}, true
		case codeForeignKeyViolation:
			return ConstraintViolation{Kind: ForeignKeyViolation, ConstraintName: pgxErr.ConstraintName, TableName: pgxErr.TableName}, true
		}
		return ConstraintViolation{}, false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return ConstraintViolation{Kind: UniqueViolation, ConstraintName: pqErr.Constraint, TableName: pqErr.Table}, true
		case codeForeignKeyViolation:
			return ConstraintViolation{Kind: ForeignKeyViolation, ConstraintName: pqErr.Constraint, TableName: pqErr.Table}, true
		}
	}

	return ConstraintViolation{}, false
}
