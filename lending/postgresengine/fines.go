package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/postgresengine/internal/adapters"
)

func fineColumns() []any {
	return []any{colID, colUserID, colLoanID, colAmount, colPaid}
}

func scanFine(rows adapters.DBRows, fine *lending.Fine) error {
	return rows.Scan(
		&fine.ID,
		&fine.UserID,
		&fine.LoanID,
		&fine.Amount,
		&fine.Paid,
	)
}

func fineRecord(fine lending.Fine) goqu.Record {
	return goqu.Record{
		colUserID: fine.UserID,
		colLoanID: fine.LoanID,
		colAmount: fine.Amount,
		colPaid:   fine.Paid,
	}
}

func (s *Store) FineByID(ctx context.Context, id int64) (lending.Fine, error) {
	return s.fineWhere(ctx, goqu.C(colID).Eq(id), keyID(id))
}

// FineByLoan returns the fine created for a loan. At most one can exist,
// the loan_id column is unique.
func (s *Store) FineByLoan(ctx context.Context, loanID int64) (lending.Fine, error) {
	return s.fineWhere(ctx, goqu.C(colLoanID).Eq(loanID), keyField(colLoanID, keyID(loanID)))
}

func (s *Store) fineWhere(ctx context.Context, where exp.Expression, key string) (lending.Fine, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(lending.TableFines)).
		Select(fineColumns()...).
		Where(where).
		ToSQL()
	if toSQLErr != nil {
		return lending.Fine{}, operationError(toSQLErr)
	}

	var fine lending.Fine

	found, err := s.fetchOne(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return scanFine(rows, &fine)
	})
	if err != nil {
		return lending.Fine{}, err
	}
	if !found {
		return lending.Fine{}, &lending.NotFoundError{Kind: lending.KindFine, Key: key}
	}

	return fine, nil
}

func (s *Store) Fines(ctx context.Context) ([]lending.Fine, error) {
	return s.fineList(ctx, nil)
}

func (s *Store) FinesByUser(ctx context.Context, userID int64) ([]lending.Fine, error) {
	return s.fineList(ctx, goqu.C(colUserID).Eq(userID))
}

func (s *Store) fineList(ctx context.Context, where exp.Expression) ([]lending.Fine, error) {
	query := builder().
		From(s.table(lending.TableFines)).
		Select(fineColumns()...).
		Order(goqu.C(colID).Asc())
	if where != nil {
		query = query.Where(where)
	}

	sqlQuery, _, toSQLErr := query.ToSQL()
	if toSQLErr != nil {
		return nil, operationError(toSQLErr)
	}

	var fines []lending.Fine

	err := s.fetchAll(ctx, sqlQuery, func(rows adapters.DBRows) error {
		var fine lending.Fine
		if scanErr := scanFine(rows, &fine); scanErr != nil {
			return scanErr
		}

		fines = append(fines, fine)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return fines, nil
}

// CountUnpaidFines counts the user's fines that are not paid yet.
func (s *Store) CountUnpaidFines(ctx context.Context, userID int64) (int, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(lending.TableFines)).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colUserID).Eq(userID), goqu.C(colPaid).IsFalse()).
		ToSQL()
	if toSQLErr != nil {
		return 0, operationError(toSQLErr)
	}

	return s.countRows(ctx, sqlQuery)
}

// SaveFine validates and persists the fine, creating it when its ID is zero
// and updating it otherwise. The loan_id column is unique, so a concurrent
// insert for the same loan loses the race cleanly: the loser reads the
// winner's row back instead of failing, keeping fine assessment idempotent.
func (s *Store) SaveFine(ctx context.Context, fine *lending.Fine) error {
	if err := lending.Validate(ctx, s, fine); err != nil {
		return err
	}

	if fine.ID == 0 {
		sqlQuery, _, toSQLErr := builder().
			Insert(s.table(lending.TableFines)).
			Rows(fineRecord(*fine)).
			Returning(colID).
			ToSQL()
		if toSQLErr != nil {
			return operationError(toSQLErr)
		}

		newID, insertErr := s.insertReturningID(ctx, sqlQuery)
		if insertErr != nil {
			if violation, ok := adapters.ClassifyConstraint(insertErr); ok && violation.Kind == adapters.UniqueViolation {
				existing, fetchErr := s.FineByLoan(ctx, fine.LoanID)
				if fetchErr != nil {
					return fetchErr
				}

				*fine = existing

				return nil
			}

			return operationError(insertErr)
		}

		fine.ID = newID
		s.logOperation(ctx, "created fine", logAttrTable, lending.TableFines)

		return nil
	}

	sqlQuery, _, toSQLErr := builder().
		Update(s.table(lending.TableFines)).
		Set(fineRecord(*fine)).
		Where(goqu.C(colID).Eq(fine.ID)).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	affected, updateErr := s.execAffected(ctx, sqlQuery)
	if updateErr != nil {
		return operationError(updateErr)
	}
	if affected == 0 {
		return &lending.NotFoundError{Kind: lending.KindFine, Key: keyID(fine.ID)}
	}

	s.logOperation(ctx, "updated fine", logAttrTable, lending.TableFines)

	return nil
}

// DeleteFine removes the fine. Nothing references fines, so no probes apply.
func (s *Store) DeleteFine(ctx context.Context, id int64) error {
	return s.guardedDeleteByID(ctx, lending.TableFines, lending.KindFine, id, nil)
}

// MarkFinePaid settles a fine.
func (s *Store) MarkFinePaid(ctx context.Context, id int64) error {
	sqlQuery, _, toSQLErr := builder().
		Update(s.table(lending.TableFines)).
		Set(goqu.Record{colPaid: true}).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	affected, updateErr := s.execAffected(ctx, sqlQuery)
	if updateErr != nil {
		return operationError(updateErr)
	}
	if affected == 0 {
		return &lending.NotFoundError{Kind: lending.KindFine, Key: keyID(id)}
	}

	s.logOperation(ctx, "settled fine", logAttrTable, lending.TableFines)

	return nil
}
