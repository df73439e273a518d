package loanservice

import (
	"context"
	"strconv"
	"time"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/finecalc"
)

// Clock supplies the current time. Production uses time.Now; tests inject a
// fixed clock.
type Clock func() time.Time

// Controller drives the loan lifecycle against a storage engine.
type Controller struct {
	storage lending.Storage
	clock   Clock
}

// Option defines a functional option for configuring a Controller.
type Option func(*Controller)

// WithClock sets the clock the controller stamps loan dates with.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// NewController creates a Controller with optional configuration.
func NewController(storage lending.Storage, options ...Option) *Controller {
	c := &Controller{storage: storage, clock: time.Now}

	for _, option := range options {
		option(c)
	}

	return c
}

// Borrow lends one copy of a book to the session's user. It creates an
// active loan due in LoanPeriodDays and decrements the book's availability
// counter, in one transaction. The user and book rows are locked first, so
// two concurrent borrows of the last copy cannot both succeed.
func (c *Controller) Borrow(ctx context.Context, command BorrowCommand) (lending.Loan, error) {
	var loan lending.Loan

	err := c.storage.WithinTx(ctx, func(uow lending.UnitOfWork) error {
		if lockErr := uow.LockUser(ctx, command.Session.UserID); lockErr != nil {
			return lockErr
		}

		book, bookErr := uow.BookForUpdate(ctx, command.BookID)
		if bookErr != nil {
			return bookErr
		}

		activeLoans, countErr := uow.CountActiveLoans(ctx, command.Session.UserID)
		if countErr != nil {
			return countErr
		}

		unpaidFines, countErr := uow.CountUnpaidFines(ctx, command.Session.UserID)
		if countErr != nil {
			return countErr
		}

		decision := decideBorrow(borrowState{
			availableCopies: book.AvailableCopies,
			activeLoans:     activeLoans,
			unpaidFines:     unpaidFines,
		})
		if decision != nil {
			return decision
		}

		now := c.clock()
		loanDate := lending.DateOnly(now)

		loan = lending.Loan{
			UserID:   command.Session.UserID,
			BookID:   book.ID,
			LoanDate: loanDate,
			DueDate:  loanDate.AddDate(0, 0, LoanPeriodDays),
		}
		if saveErr := uow.SaveLoan(ctx, &loan); saveErr != nil {
			return saveErr
		}

		book.AvailableCopies--
		if saveErr := uow.SaveBook(ctx, &book); saveErr != nil {
			return saveErr
		}

		return uow.AppendEvent(ctx, lending.BuildLoanOpened(loan, now))
	})
	if err != nil {
		return lending.Loan{}, err
	}

	return loan, nil
}

// Return closes an active loan. It stamps the return date, increments the
// book's availability counter (never past the total) and assesses an overdue
// fine, in one transaction. Returning an already returned loan is rejected;
// members cannot return loans of other users.
func (c *Controller) Return(ctx context.Context, command ReturnCommand) (lending.Loan, *lending.Fine, error) {
	var (
		loan lending.Loan
		fine *lending.Fine
	)

	err := c.storage.WithinTx(ctx, func(uow lending.UnitOfWork) error {
		locked, loanErr := uow.LoanForUpdate(ctx, command.LoanID)
		if loanErr != nil {
			return loanErr
		}

		if !command.Session.IsAdmin() && locked.UserID != command.Session.UserID {
			return &lending.NotFoundError{Kind: lending.KindLoan, Key: loanKey(command.LoanID)}
		}

		if decision := decideReturn(locked); decision != nil {
			return decision
		}

		book, bookErr := uow.BookForUpdate(ctx, locked.BookID)
		if bookErr != nil {
			return bookErr
		}

		now := c.clock()
		returnDate := lending.DateOnly(now)
		locked.ReturnDate = &returnDate

		if saveErr := uow.SaveLoan(ctx, &locked); saveErr != nil {
			return saveErr
		}

		if book.AvailableCopies < book.TotalCopies {
			book.AvailableCopies++
		}
		if saveErr := uow.SaveBook(ctx, &book); saveErr != nil {
			return saveErr
		}

		if appendErr := uow.AppendEvent(ctx, lending.BuildLoanReturned(locked, now)); appendErr != nil {
			return appendErr
		}

		assessed, assessErr := finecalc.Assess(ctx, uow, locked, now)
		if assessErr != nil {
			return assessErr
		}

		loan = locked
		fine = assessed

		return nil
	})
	if err != nil {
		return lending.Loan{}, nil, err
	}

	return loan, fine, nil
}

func loanKey(id int64) string {
	return "id=" + strconv.FormatInt(id, 10)
}
