package lending

import (
	"time"
)

// Role is the access role of a User.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Author is a book author. Name is unique system-wide.
type Author struct {
	ID   int64
	Name string
}

// Publisher is a book publisher. Name is unique system-wide.
type Publisher struct {
	ID   int64
	Name string
}

// Category is a book category. Name is unique system-wide.
type Category struct {
	ID   int64
	Name string
}

// Book is a catalog entry with an availability counter.
// The invariant 0 <= AvailableCopies <= TotalCopies holds before and after
// every save, borrow and return.
type Book struct {
	ID              int64
	ISBN            string
	Title           string
	AuthorID        int64
	PublisherID     int64
	CategoryID      int64
	TotalCopies     int
	AvailableCopies int
}

// User is a library member or the single system administrator.
// Password holds the bcrypt hash once the user has been saved.
type User struct {
	ID         int64
	Name       string
	Email      string
	Password   string
	JoinedDate time.Time
	Role       Role
}

// BuildUser creates an unsaved User with the defaults the system applies
// on registration: joined today, member role.
func BuildUser(name string, email string, password string) User {
	return User{
		Name:       name,
		Email:      email,
		Password:   password,
		JoinedDate: DateOnly(time.Now()),
		Role:       RoleMember,
	}
}

// Loan records one borrowed book copy. A loan is Active while ReturnDate is
// nil and Returned once it is set; Returned is terminal.
type Loan struct {
	ID         int64
	UserID     int64
	BookID     int64
	LoanDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
}

// Active reports whether the loan has not been returned yet.
func (l Loan) Active() bool {
	return l.ReturnDate == nil
}

// Fine is an overdue charge originating from exactly one loan.
// Amount is a non-negative whole number of currency units.
type Fine struct {
	ID     int64
	UserID int64
	LoanID int64
	Amount int64
	Paid   bool
}

// DateOnly truncates t to day granularity. All loan, due, return and joined
// dates in the system are day-granular.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
