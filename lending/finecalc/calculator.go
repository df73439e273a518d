// Package finecalc computes and assesses overdue fines.
//
// A return within the grace period after the due date costs nothing. Beyond
// it, every day past the grace period costs the daily rate. Assessment is
// idempotent per loan: a loan carries at most one fine, backed by a unique
// constraint on the fine's loan reference.
package finecalc

import (
	"context"
	"errors"
	"time"

	"github.com/libsys/lending-engine-go/lending"
)

const (
	// GraceDays is the number of days past the due date that stay free of
	// charge.
	GraceDays = 3

	// DailyRate is the charge per chargeable overdue day, in whole currency
	// units.
	DailyRate = 25
)

// Amount computes the fine for a loan due on dueDate and returned on
// returnDate. Both dates are taken at day granularity. The first GraceDays
// days past the due date are free; every further day costs DailyRate.
//
// Returned on time or within the grace period, the amount is zero:
// Amount is never negative.
func Amount(dueDate time.Time, returnDate time.Time) int64 {
	due := lending.DateOnly(dueDate)
	returned := lending.DateOnly(returnDate)

	overdueDays := int64(returned.Sub(due).Hours() / 24)
	chargeableDays := overdueDays - GraceDays
	if chargeableDays <= 0 {
		return 0
	}

	return chargeableDays * DailyRate
}

// Assess charges the fine for a returned loan inside the given unit of work.
// It returns nil without a charge when the loan came back within the grace
// period, and the already existing fine when the loan was assessed before.
// A newly created fine is recorded in the journal.
func Assess(ctx context.Context, uow lending.UnitOfWork, loan lending.Loan, occurredAt time.Time) (*lending.Fine, error) {
	if loan.ReturnDate == nil {
		return nil, nil
	}

	existing, err := uow.FineByLoan(ctx, loan.ID)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, lending.ErrNotFound) {
		return nil, err
	}

	amount := Amount(loan.DueDate, *loan.ReturnDate)
	if amount == 0 {
		return nil, nil
	}

	fine := lending.Fine{
		UserID: loan.UserID,
		LoanID: loan.ID,
		Amount: amount,
	}
	if saveErr := uow.SaveFine(ctx, &fine); saveErr != nil {
		return nil, saveErr
	}

	if appendErr := uow.AppendEvent(ctx, lending.BuildFineAssessed(fine, occurredAt)); appendErr != nil {
		return nil, appendErr
	}

	return &fine, nil
}
