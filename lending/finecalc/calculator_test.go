package finecalc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/finecalc"
)

func day(value string) time.Time {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return d
}

func Test_Amount_ZeroWhenReturnedOnTime(t *testing.T) {
	assert.Zero(t, finecalc.Amount(day("2026-09-15"), day("2026-09-15")))
	assert.Zero(t, finecalc.Amount(day("2026-09-15"), day("2026-09-10")))
}

func Test_Amount_ZeroWithinGracePeriod(t *testing.T) {
	assert.Zero(t, finecalc.Amount(day("2026-09-15"), day("2026-09-16")))
	assert.Zero(t, finecalc.Amount(day("2026-09-15"), day("2026-09-18")))
}

func Test_Amount_ChargesDaysBeyondGrace(t *testing.T) {
	// one chargeable day right past the grace period
	assert.Equal(t, int64(25), finecalc.Amount(day("2026-09-15"), day("2026-09-19")))

	// ten days late: seven chargeable days
	assert.Equal(t, int64(175), finecalc.Amount(day("2026-09-15"), day("2026-09-25")))
}

func Test_Amount_TruncatesToDayGranularity(t *testing.T) {
	// arrange
	due := day("2026-09-15").Add(23 * time.Hour)
	returned := day("2026-09-25").Add(1 * time.Minute)

	// assert
	assert.Equal(t, int64(175), finecalc.Amount(due, returned))
}

// fineUOW implements only what Assess touches.
type fineUOW struct {
	lending.UnitOfWork

	finesByLoan map[int64]lending.Fine
	savedFines  []lending.Fine
	events      []lending.DomainEvent
}

func newFineUOW() *fineUOW {
	return &fineUOW{finesByLoan: make(map[int64]lending.Fine)}
}

func (u *fineUOW) FineByLoan(_ context.Context, loanID int64) (lending.Fine, error) {
	fine, ok := u.finesByLoan[loanID]
	if !ok {
		return lending.Fine{}, &lending.NotFoundError{Kind: lending.KindFine, Key: "loan_id"}
	}
	return fine, nil
}

func (u *fineUOW) SaveFine(_ context.Context, fine *lending.Fine) error {
	fine.ID = int64(len(u.savedFines) + 1)
	u.savedFines = append(u.savedFines, *fine)
	u.finesByLoan[fine.LoanID] = *fine
	return nil
}

func (u *fineUOW) AppendEvent(_ context.Context, event lending.DomainEvent) error {
	u.events = append(u.events, event)
	return nil
}

func overdueLoan() lending.Loan {
	returned := day("2026-09-25")
	return lending.Loan{
		ID:         11,
		UserID:     3,
		BookID:     5,
		LoanDate:   day("2026-09-01"),
		DueDate:    day("2026-09-15"),
		ReturnDate: &returned,
	}
}

func Test_Assess_CreatesFineForOverdueReturn(t *testing.T) {
	// arrange
	uow := newFineUOW()
	loan := overdueLoan()
	now := time.Now()

	// act
	fine, err := finecalc.Assess(context.Background(), uow, loan, now)

	// assert
	require.NoError(t, err)
	require.NotNil(t, fine)
	assert.Equal(t, int64(175), fine.Amount)
	assert.Equal(t, loan.UserID, fine.UserID)
	assert.Equal(t, loan.ID, fine.LoanID)
	assert.False(t, fine.Paid)

	require.Len(t, uow.events, 1)
	assert.Equal(t, lending.FineAssessedEventType, uow.events[0].EventType())
}

func Test_Assess_NoFineWithinGracePeriod(t *testing.T) {
	// arrange
	uow := newFineUOW()
	loan := overdueLoan()
	returned := day("2026-09-17")
	loan.ReturnDate = &returned

	// act
	fine, err := finecalc.Assess(context.Background(), uow, loan, time.Now())

	// assert
	require.NoError(t, err)
	assert.Nil(t, fine)
	assert.Empty(t, uow.savedFines)
	assert.Empty(t, uow.events)
}

func Test_Assess_Idempotent_WhenLoanAlreadyAssessed(t *testing.T) {
	// arrange
	uow := newFineUOW()
	loan := overdueLoan()

	first, err := finecalc.Assess(context.Background(), uow, loan, time.Now())
	require.NoError(t, err)
	require.NotNil(t, first)

	// act
	second, err := finecalc.Assess(context.Background(), uow, loan, time.Now())

	// assert
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, uow.savedFines, 1)
	assert.Len(t, uow.events, 1)
}

func Test_Assess_NoopForActiveLoan(t *testing.T) {
	// arrange
	uow := newFineUOW()
	loan := overdueLoan()
	loan.ReturnDate = nil

	// act
	fine, err := finecalc.Assess(context.Background(), uow, loan, time.Now())

	// assert
	require.NoError(t, err)
	assert.Nil(t, fine)
}
