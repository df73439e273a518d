// Package postgresengine provides the PostgreSQL storage engine for the
// lending domain.
//
// The engine supports multiple database adapters (pgx, database/sql, sqlx)
// behind a unified interface and builds every statement with goqu as fully
// interpolated SQL. Unique-constraint and foreign-key violations raised by
// the database are translated into the domain error taxonomy: duplicate
// errors on the unique name, email and isbn columns, in-use errors with the
// list of blocking dependents on guarded deletes.
//
// WithinTx opens the unit of work the loan lifecycle and fine assessment run
// on. All reads that precede a dependent write take row-level locks
// (SELECT ... FOR UPDATE), so concurrent borrow and return operations on the
// same user or book serialize instead of racing.
package postgresengine
