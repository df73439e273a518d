package postgresengine

import (
	"context"

	"github.com/libsys/lending-engine-go/lending"
)

// The Store implements the storage port of the lifecycle services.
var _ lending.Storage = (*Store)(nil)

// UnitOfWork exposes the transactional surface of one open transaction.
// Every call runs against that transaction's connection; row locks taken by
// the ...ForUpdate reads are held until WithinTx commits or rolls back.
type UnitOfWork struct {
	store *Store
}

var _ lending.UnitOfWork = (*UnitOfWork)(nil)

// WithinTx runs fn inside one transaction. fn returning nil commits, any
// error rolls back and is returned unchanged.
func (s *Store) WithinTx(ctx context.Context, fn func(uow lending.UnitOfWork) error) error {
	return s.withTx(ctx, func(txStore *Store) error {
		return fn(&UnitOfWork{store: txStore})
	})
}

// withTx opens a transaction and runs fn against a Store copy bound to it.
func (s *Store) withTx(ctx context.Context, fn func(txStore *Store) error) error {
	tx, beginErr := s.db.Begin(ctx)
	if beginErr != nil {
		return operationError(beginErr)
	}

	if err := fn(s.withRunner(tx)); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			s.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
		}

		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return operationError(commitErr)
	}

	return nil
}

func (u *UnitOfWork) RefExists(ctx context.Context, table string, id int64) (bool, error) {
	return u.store.RefExists(ctx, table, id)
}

func (u *UnitOfWork) LockUser(ctx context.Context, userID int64) error {
	return u.store.LockUser(ctx, userID)
}

func (u *UnitOfWork) BookForUpdate(ctx context.Context, bookID int64) (lending.Book, error) {
	return u.store.BookForUpdate(ctx, bookID)
}

func (u *UnitOfWork) LoanForUpdate(ctx context.Context, loanID int64) (lending.Loan, error) {
	return u.store.LoanForUpdate(ctx, loanID)
}

func (u *UnitOfWork) CountActiveLoans(ctx context.Context, userID int64) (int, error) {
	return u.store.CountActiveLoans(ctx, userID)
}

func (u *UnitOfWork) CountUnpaidFines(ctx context.Context, userID int64) (int, error) {
	return u.store.CountUnpaidFines(ctx, userID)
}

func (u *UnitOfWork) SaveBook(ctx context.Context, book *lending.Book) error {
	return u.store.SaveBook(ctx, book)
}

func (u *UnitOfWork) SaveLoan(ctx context.Context, loan *lending.Loan) error {
	return u.store.SaveLoan(ctx, loan)
}

func (u *UnitOfWork) FineByLoan(ctx context.Context, loanID int64) (lending.Fine, error) {
	return u.store.FineByLoan(ctx, loanID)
}

func (u *UnitOfWork) SaveFine(ctx context.Context, fine *lending.Fine) error {
	return u.store.SaveFine(ctx, fine)
}

func (u *UnitOfWork) AppendEvent(ctx context.Context, event lending.DomainEvent) error {
	return u.store.AppendEvent(ctx, event)
}
