package loanservice

import (
	"github.com/libsys/lending-engine-go/lending"
)

const (
	// LoanPeriodDays is the lending period: the due date is the loan date
	// plus this many days.
	LoanPeriodDays = 14

	maxActiveLoansPerUser = 3
	maxUnpaidFinesPerUser = 1

	failureReasonTooManyActiveLoans = "User has reached the limit of active loans."
	failureReasonTooManyUnpaidFines = "User has too many unpaid fines."
	failureReasonNoAvailableCopies  = "No available copies."
	failureReasonAlreadyReturned    = "Loan is already returned."
)

// borrowState is what the borrow decision depends on, read under row locks
// inside the transaction the decision commits in.
type borrowState struct {
	availableCopies int
	activeLoans     int
	unpaidFines     int
}

// decideBorrow applies the borrowing rules. This is a pure function with no
// side effects - it takes the locked state and returns nil when the borrow
// may proceed.
//
// Business Rules:
//
//	GIVEN: A user and a book, both locked
//	WHEN: A borrow is requested
//	THEN: The borrow proceeds
//	ERROR: "No available copies." if the book's availability counter is zero
//	ERROR: too many active loans if the user already has 3 active loans
//	ERROR: too many unpaid fines if the user has more than 1 unpaid fine
func decideBorrow(s borrowState) error {
	if s.availableCopies <= 0 {
		return lending.NewValidationError("book", failureReasonNoAvailableCopies)
	}

	if s.activeLoans >= maxActiveLoansPerUser {
		return lending.NewValidationError("user", failureReasonTooManyActiveLoans)
	}

	if s.unpaidFines > maxUnpaidFinesPerUser {
		return lending.NewValidationError("user", failureReasonTooManyUnpaidFines)
	}

	return nil
}

// decideReturn applies the return rules. This is a pure function with no
// side effects - it takes the locked loan and returns nil when the return
// may proceed.
//
// Business Rules:
//
//	GIVEN: A loan, locked
//	WHEN: A return is requested
//	THEN: The return proceeds
//	ERROR: "Loan is already returned." if the loan is in its terminal state
func decideReturn(loan lending.Loan) error {
	if !loan.Active() {
		return lending.NewValidationError("loan", failureReasonAlreadyReturned)
	}

	return nil
}
