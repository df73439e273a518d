package lending

import (
	"time"
)

// Event type identifiers for the lending journal.
const (
	LoanOpenedEventType   = "LoanOpened"
	LoanReturnedEventType = "LoanReturned"
	FineAssessedEventType = "FineAssessed"
)

// DomainEvent is a fact about the lending lifecycle, appended to the journal
// within the same unit of work as the state change it records.
type DomainEvent interface {
	EventType() string
	HasOccurredAt() time.Time
}

// LoanOpened records that a book copy was borrowed.
type LoanOpened struct {
	LoanID     int64
	UserID     int64
	BookID     int64
	LoanDate   string
	DueDate    string
	OccurredAt time.Time `json:"-"`
}

// BuildLoanOpened creates a LoanOpened event from a persisted loan.
func BuildLoanOpened(loan Loan, occurredAt time.Time) LoanOpened {
	return LoanOpened{
		LoanID:     loan.ID,
		UserID:     loan.UserID,
		BookID:     loan.BookID,
		LoanDate:   loan.LoanDate.Format(time.DateOnly),
		DueDate:    loan.DueDate.Format(time.DateOnly),
		OccurredAt: occurredAt,
	}
}

// EventType returns the event type identifier.
func (e LoanOpened) EventType() string {
	return LoanOpenedEventType
}

// HasOccurredAt returns when this event occurred.
func (e LoanOpened) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// LoanReturned records that a borrowed book copy came back.
type LoanReturned struct {
	LoanID     int64
	UserID     int64
	BookID     int64
	ReturnDate string
	OccurredAt time.Time `json:"-"`
}

// BuildLoanReturned creates a LoanReturned event from a returned loan.
func BuildLoanReturned(loan Loan, occurredAt time.Time) LoanReturned {
	returnDate := ""
	if loan.ReturnDate != nil {
		returnDate = loan.ReturnDate.Format(time.DateOnly)
	}

	return LoanReturned{
		LoanID:     loan.ID,
		UserID:     loan.UserID,
		BookID:     loan.BookID,
		ReturnDate: returnDate,
		OccurredAt: occurredAt,
	}
}

// EventType returns the event type identifier.
func (e LoanReturned) EventType() string {
	return LoanReturnedEventType
}

// HasOccurredAt returns when this event occurred.
func (e LoanReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// FineAssessed records that an overdue return produced a fine.
type FineAssessed struct {
	FineID     int64
	LoanID     int64
	UserID     int64
	Amount     int64
	OccurredAt time.Time `json:"-"`
}

// BuildFineAssessed creates a FineAssessed event from a persisted fine.
func BuildFineAssessed(fine Fine, occurredAt time.Time) FineAssessed {
	return FineAssessed{
		FineID:     fine.ID,
		LoanID:     fine.LoanID,
		UserID:     fine.UserID,
		Amount:     fine.Amount,
		OccurredAt: occurredAt,
	}
}

// EventType returns the event type identifier.
func (e FineAssessed) EventType() string {
	return FineAssessedEventType
}

// HasOccurredAt returns when this event occurred.
func (e FineAssessed) HasOccurredAt() time.Time {
	return e.OccurredAt
}
