package loanservice

import (
	"github.com/libsys/lending-engine-go/lending"
)

// BorrowCommand requests that the session's user borrows one copy of a book.
type BorrowCommand struct {
	Session lending.Session
	BookID  int64
}

// BuildBorrowCommand creates a BorrowCommand.
func BuildBorrowCommand(session lending.Session, bookID int64) BorrowCommand {
	return BorrowCommand{Session: session, BookID: bookID}
}

// ReturnCommand requests that a loan is closed. Members may only return
// their own loans; the admin may return any loan.
type ReturnCommand struct {
	Session lending.Session
	LoanID  int64
}

// BuildReturnCommand creates a ReturnCommand.
func BuildReturnCommand(session lending.Session, loanID int64) ReturnCommand {
	return ReturnCommand{Session: session, LoanID: loanID}
}
