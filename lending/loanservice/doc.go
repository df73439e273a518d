// Package loanservice implements the loan lifecycle: borrowing a book copy
// and returning it, with fine assessment on overdue returns.
//
// Each operation runs inside one storage transaction. The rows the decision
// depends on are read under row-level locks, the business rules are applied
// by pure decide functions, and every resulting write (the loan, the book's
// availability counter, the fine, the journal events) commits atomically or
// not at all.
package loanservice
