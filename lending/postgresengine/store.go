package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/postgresengine/internal/adapters"
)

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

const (
	dialectPostgres = "postgres"

	logMsgSQLExecuted     = "executed sql for: "
	logMsgOperation       = "lending store operation: "
	logMsgDBQueryFailed   = "database query execution failed"
	logMsgDBExecFailed    = "database execution failed"
	logMsgCloseRowsFailed = "failed to close database rows"
	logMsgScanRowFailed   = "failed to scan database row"
	logMsgRollbackFailed  = "failed to roll back transaction"

	logAttrError        = "error"
	logAttrQuery        = "query"
	logAttrDurationMS   = "duration_ms"
	logAttrTable        = "table"
	logAttrRowsAffected = "rows_affected"

	colID              = "id"
	colName            = "name"
	colISBN            = "isbn"
	colTitle           = "title"
	colAuthorID        = "author_id"
	colPublisherID     = "publisher_id"
	colCategoryID      = "category_id"
	colTotalCopies     = "total_copies"
	colAvailableCopies = "available_copies"
	colEmail           = "email"
	colPassword        = "password"
	colJoinedDate      = "joined_date"
	colRole            = "role"
	colUserID          = "user_id"
	colBookID          = "book_id"
	colLoanDate        = "loan_date"
	colDueDate         = "due_date"
	colReturnDate      = "return_date"
	colLoanID          = "loan_id"
	colAmount          = "amount"
	colPaid            = "paid"
	colEventType       = "event_type"
	colOccurredAt      = "occurred_at"
	colPayload         = "payload"
)

// Store is the PostgreSQL storage engine for the lending domain. It exposes
// the per-entity repositories, the referential-integrity guarded deletes and
// the transactional unit of work the lifecycle services run on.
//
// Every repository call executes in its own statement scope against the
// pool; WithinTx binds a Store copy to one transaction so that multi-step
// mutations commit or roll back as a unit.
type Store struct {
	db          adapters.DBAdapter
	run         adapters.Querier
	tablePrefix string
	logger      Logger
	ctxLogger   ContextualLogger
}

// NewStoreFromPGXPool creates a new Store using a pgx pool with optional configuration.
func NewStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Store, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(pool), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{db: db}
	s.run = db

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// withRunner returns a copy of the Store bound to the given statement runner.
func (s *Store) withRunner(run adapters.Querier) *Store {
	bound := *s
	bound.run = run

	return &bound
}

func (s *Store) table(name string) string {
	return s.tablePrefix + name
}

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// keyID renders an id-based lookup key for error messages.
func keyID(id int64) string {
	return "id=" + strconv.FormatInt(id, 10)
}

// keyField renders a field-based lookup key for error messages.
func keyField(field, value string) string {
	return field + "=" + value
}

// operationError wraps an unexpected storage failure into the catch-all
// domain error. Constraint signals are classified before it applies.
func operationError(err error) error {
	return errors.Join(lending.ErrDatabaseOperation, err)
}

// RefExists reports whether a row with the given id exists in the referenced
// table. It implements lending.ReferenceChecker for the validation engine.
func (s *Store) RefExists(ctx context.Context, table string, id int64) (bool, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(table)).
		Select(goqu.V(1)).
		Where(goqu.C(colID).Eq(id)).
		Limit(1).
		ToSQL()
	if toSQLErr != nil {
		return false, operationError(toSQLErr)
	}

	rows, err := s.executeQuery(ctx, sqlQuery)
	if err != nil {
		return false, err
	}
	defer s.closeRows(ctx, rows)

	found := rows.Next()
	if rowsErr := rows.Err(); rowsErr != nil {
		return false, operationError(rowsErr)
	}

	return found, nil
}

// executeQuery executes a select and wraps any failure as an operation error.
func (s *Store) executeQuery(ctx context.Context, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := s.run.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, operationError(queryErr)
	}

	return rows, nil
}

// executeExec executes a mutation statement. The driver error is returned
// unwrapped so call sites can classify constraint violations first.
func (s *Store) executeExec(ctx context.Context, sqlQuery string) (adapters.DBResult, error) {
	start := time.Now()
	result, execErr := s.run.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return nil, execErr
	}

	return result, nil
}

// execAffected executes a mutation and returns the affected row count.
// The driver error, if any, is returned unwrapped for classification.
func (s *Store) execAffected(ctx context.Context, sqlQuery string) (int64, error) {
	result, err := s.executeExec(ctx, sqlQuery)
	if err != nil {
		return 0, err
	}

	affected, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return 0, operationError(affectedErr)
	}

	return affected, nil
}

// fetchOne runs a select expected to return at most one row and scans it.
// It reports whether a row was found.
func (s *Store) fetchOne(ctx context.Context, sqlQuery string, scan func(rows adapters.DBRows) error) (bool, error) {
	rows, err := s.executeQuery(ctx, sqlQuery)
	if err != nil {
		return false, err
	}
	defer s.closeRows(ctx, rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return false, operationError(rowsErr)
		}
		return false, nil
	}

	if scanErr := scan(rows); scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		return false, operationError(scanErr)
	}

	return true, nil
}

// fetchAll runs a select and scans every row with the given callback.
func (s *Store) fetchAll(ctx context.Context, sqlQuery string, scan func(rows adapters.DBRows) error) error {
	rows, err := s.executeQuery(ctx, sqlQuery)
	if err != nil {
		return err
	}
	defer s.closeRows(ctx, rows)

	for rows.Next() {
		if scanErr := scan(rows); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return operationError(scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return operationError(rowsErr)
	}

	return nil
}

// insertReturningID runs an INSERT ... RETURNING id statement and returns the
// generated id. The driver error is returned unwrapped for classification.
func (s *Store) insertReturningID(ctx context.Context, sqlQuery string) (int64, error) {
	start := time.Now()
	rows, queryErr := s.run.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, time.Since(start))

	if queryErr != nil {
		return 0, queryErr
	}
	defer s.closeRows(ctx, rows)

	var id int64
	if rows.Next() {
		if scanErr := rows.Scan(&id); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return 0, scanErr
		}
	}

	// Constraint violations on drivers with lazy execution surface here.
	if rowsErr := rows.Err(); rowsErr != nil {
		return 0, rowsErr
	}

	return id, nil
}

// countRows runs a COUNT(*) select and returns the count.
func (s *Store) countRows(ctx context.Context, sqlQuery string) (int, error) {
	var count int

	found, err := s.fetchOne(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&count)
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	return count, nil
}

func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}
