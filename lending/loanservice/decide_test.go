package loanservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libsys/lending-engine-go/lending"
)

func Test_DecideBorrow_Success_WhenAllPreconditionsMet(t *testing.T) {
	// arrange
	state := borrowState{availableCopies: 1, activeLoans: 0, unpaidFines: 0}

	// act
	err := decideBorrow(state)

	// assert
	assert.NoError(t, err)
}

func Test_DecideBorrow_Success_WithOneUnpaidFine(t *testing.T) {
	// arrange
	state := borrowState{availableCopies: 1, activeLoans: 2, unpaidFines: 1}

	// act
	err := decideBorrow(state)

	// assert
	assert.NoError(t, err)
}

func Test_DecideBorrow_Fails_WhenNoCopiesAvailable(t *testing.T) {
	// arrange
	state := borrowState{availableCopies: 0, activeLoans: 0, unpaidFines: 0}

	// act
	err := decideBorrow(state)

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, lending.ErrValidationFailed)

	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "No available copies.", verr.Reason("book"))
}

func Test_DecideBorrow_Fails_AtActiveLoanLimit(t *testing.T) {
	// arrange
	state := borrowState{availableCopies: 5, activeLoans: maxActiveLoansPerUser, unpaidFines: 0}

	// act
	err := decideBorrow(state)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, failureReasonTooManyActiveLoans, verr.Reason("user"))
}

func Test_DecideBorrow_Fails_WithTwoUnpaidFines(t *testing.T) {
	// arrange
	state := borrowState{availableCopies: 5, activeLoans: 0, unpaidFines: 2}

	// act
	err := decideBorrow(state)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, failureReasonTooManyUnpaidFines, verr.Reason("user"))
}

func Test_DecideReturn_Success_ForActiveLoan(t *testing.T) {
	// arrange
	loan := lending.Loan{ID: 1, UserID: 1, BookID: 1}

	// act
	err := decideReturn(loan)

	// assert
	assert.NoError(t, err)
}

func Test_DecideReturn_Fails_WhenLoanAlreadyReturned(t *testing.T) {
	// arrange
	returned := lending.DateOnly(time.Now())
	loan := lending.Loan{ID: 1, UserID: 1, BookID: 1, ReturnDate: &returned}

	// act
	err := decideReturn(loan)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Loan is already returned.", verr.Reason("loan"))
}
