package postgresengine

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/postgresengine/internal/adapters"
)

func loanColumns() []any {
	return []any{colID, colUserID, colBookID, colLoanDate, colDueDate, colReturnDate}
}

func scanLoan(rows adapters.DBRows, loan *lending.Loan) error {
	var returnDate sql.NullTime

	err := rows.Scan(
		&loan.ID,
		&loan.UserID,
		&loan.BookID,
		&loan.LoanDate,
		&loan.DueDate,
		&returnDate,
	)
	if err != nil {
		return err
	}

	if returnDate.Valid {
		d := returnDate.Time
		loan.ReturnDate = &d
	}

	return nil
}

func loanRecord(loan lending.Loan) goqu.Record {
	var returnDate any
	if loan.ReturnDate != nil {
		returnDate = *loan.ReturnDate
	}

	return goqu.Record{
		colUserID:     loan.UserID,
		colBookID:     loan.BookID,
		colLoanDate:   loan.LoanDate,
		colDueDate:    loan.DueDate,
		colReturnDate: returnDate,
	}
}

func (s *Store) LoanByID(ctx context.Context, id int64) (lending.Loan, error) {
	return s.loanWhere(ctx, id, false)
}

// LoanForUpdate loads a loan under a row-level write lock. It must run
// inside a transaction; the lock is held until commit or rollback.
func (s *Store) LoanForUpdate(ctx context.Context, id int64) (lending.Loan, error) {
	return s.loanWhere(ctx, id, true)
}

func (s *Store) loanWhere(ctx context.Context, id int64, forUpdate bool) (lending.Loan, error) {
	query := builder().
		From(s.table(lending.TableLoans)).
		Select(loanColumns()...).
		Where(goqu.C(colID).Eq(id))
	if forUpdate {
		query = query.ForUpdate(exp.Wait)
	}

	sqlQuery, _, toSQLErr := query.ToSQL()
	if toSQLErr != nil {
		return lending.Loan{}, operationError(toSQLErr)
	}

	var loan lending.Loan

	found, err := s.fetchOne(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return scanLoan(rows, &loan)
	})
	if err != nil {
		return lending.Loan{}, err
	}
	if !found {
		return lending.Loan{}, &lending.NotFoundError{Kind: lending.KindLoan, Key: keyID(id)}
	}

	return loan, nil
}

func (s *Store) Loans(ctx context.Context, filter lending.LoanFilter) ([]lending.Loan, error) {
	return s.loanList(ctx, nil, filter)
}

// LoansByUser lists one user's loans, optionally narrowed to active or
// returned ones.
func (s *Store) LoansByUser(ctx context.Context, userID int64, filter lending.LoanFilter) ([]lending.Loan, error) {
	return s.loanList(ctx, goqu.C(colUserID).Eq(userID), filter)
}

func (s *Store) loanList(ctx context.Context, where exp.Expression, filter lending.LoanFilter) ([]lending.Loan, error) {
	query := builder().
		From(s.table(lending.TableLoans)).
		Select(loanColumns()...).
		Order(goqu.C(colID).Asc())
	if where != nil {
		query = query.Where(where)
	}

	switch filter {
	case lending.LoanFilterActive:
		query = query.Where(goqu.C(colReturnDate).IsNull())
	case lending.LoanFilterReturned:
		query = query.Where(goqu.C(colReturnDate).IsNotNull())
	case lending.LoanFilterAll:
	}

	sqlQuery, _, toSQLErr := query.ToSQL()
	if toSQLErr != nil {
		return nil, operationError(toSQLErr)
	}

	var loans []lending.Loan

	err := s.fetchAll(ctx, sqlQuery, func(rows adapters.DBRows) error {
		var loan lending.Loan
		if scanErr := scanLoan(rows, &loan); scanErr != nil {
			return scanErr
		}

		loans = append(loans, loan)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return loans, nil
}

// CountActiveLoans counts the user's loans with no return date.
func (s *Store) CountActiveLoans(ctx context.Context, userID int64) (int, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(lending.TableLoans)).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colUserID).Eq(userID), goqu.C(colReturnDate).IsNull()).
		ToSQL()
	if toSQLErr != nil {
		return 0, operationError(toSQLErr)
	}

	return s.countRows(ctx, sqlQuery)
}

// SaveLoan validates and persists the loan, creating it when its ID is zero
// and updating it otherwise. Dates are truncated to day granularity.
func (s *Store) SaveLoan(ctx context.Context, loan *lending.Loan) error {
	loan.LoanDate = lending.DateOnly(loan.LoanDate)
	loan.DueDate = lending.DateOnly(loan.DueDate)
	if loan.ReturnDate != nil {
		returned := lending.DateOnly(*loan.ReturnDate)
		loan.ReturnDate = &returned
	}

	if err := lending.Validate(ctx, s, loan); err != nil {
		return err
	}

	if loan.ID == 0 {
		sqlQuery, _, toSQLErr := builder().
			Insert(s.table(lending.TableLoans)).
			Rows(loanRecord(*loan)).
			Returning(colID).
			ToSQL()
		if toSQLErr != nil {
			return operationError(toSQLErr)
		}

		newID, insertErr := s.insertReturningID(ctx, sqlQuery)
		if insertErr != nil {
			return operationError(insertErr)
		}

		loan.ID = newID
		s.logOperation(ctx, "created loan", logAttrTable, lending.TableLoans)

		return nil
	}

	sqlQuery, _, toSQLErr := builder().
		Update(s.table(lending.TableLoans)).
		Set(loanRecord(*loan)).
		Where(goqu.C(colID).Eq(loan.ID)).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	affected, updateErr := s.execAffected(ctx, sqlQuery)
	if updateErr != nil {
		return operationError(updateErr)
	}
	if affected == 0 {
		return &lending.NotFoundError{Kind: lending.KindLoan, Key: keyID(loan.ID)}
	}

	s.logOperation(ctx, "updated loan", logAttrTable, lending.TableLoans)

	return nil
}

// DeleteLoan removes the loan unless a fine still references it.
func (s *Store) DeleteLoan(ctx context.Context, id int64) error {
	return s.guardedDeleteByID(ctx, lending.TableLoans, lending.KindLoan, id, fineDependents())
}
