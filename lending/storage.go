package lending

import (
	"context"
)

// Logical table names of the storage schema. Engines may prefix them.
const (
	TableAuthors    = "authors"
	TablePublishers = "publishers"
	TableCategories = "categories"
	TableBooks      = "books"
	TableUsers      = "users"
	TableLoans      = "loans"
	TableFines      = "fines"
	TableEvents     = "lending_events"
)

// LoanFilter narrows loan listings by lifecycle state.
type LoanFilter string

const (
	LoanFilterAll      LoanFilter = "all"
	LoanFilterActive   LoanFilter = "active"
	LoanFilterReturned LoanFilter = "returned"
)

// UnitOfWork is the transactional surface the lifecycle services operate on.
// Every method runs inside the transaction the unit of work was opened with;
// the ...ForUpdate reads take row-level locks so that the read-check-then-write
// sequences of the loan lifecycle cannot race.
type UnitOfWork interface {
	ReferenceChecker

	// LockUser locks the user row, serializing all lifecycle operations for
	// that user. Fails with a NotFoundError if the user does not exist.
	LockUser(ctx context.Context, userID int64) error

	// BookForUpdate loads and locks a book row.
	BookForUpdate(ctx context.Context, bookID int64) (Book, error)

	// LoanForUpdate loads and locks a loan row.
	LoanForUpdate(ctx context.Context, loanID int64) (Loan, error)

	// CountActiveLoans counts the user's loans with no return date.
	CountActiveLoans(ctx context.Context, userID int64) (int, error)

	// CountUnpaidFines counts the user's fines that are not paid yet.
	CountUnpaidFines(ctx context.Context, userID int64) (int, error)

	// SaveBook persists the book (insert when ID is zero, else update).
	SaveBook(ctx context.Context, book *Book) error

	// SaveLoan persists the loan (insert when ID is zero, else update).
	SaveLoan(ctx context.Context, loan *Loan) error

	// FineByLoan returns the fine created for a loan, if any.
	FineByLoan(ctx context.Context, loanID int64) (Fine, error)

	// SaveFine persists the fine (insert when ID is zero, else update).
	SaveFine(ctx context.Context, fine *Fine) error

	// AppendEvent appends a domain event to the journal.
	AppendEvent(ctx context.Context, event DomainEvent) error
}

// Storage is the port a storage engine implements for the lifecycle services.
// WithinTx runs fn inside one transaction: fn returning nil commits, any
// error rolls back and is returned unchanged, so no partial state change is
// ever observable.
type Storage interface {
	WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}
