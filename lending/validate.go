package lending

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode"
)

const (
	msgEmptyField      = "Field can't be empty"
	msgNotEnglish      = "Text must be fully in English."
	msgNameTooShort    = "Name is too short"
	msgNameTooLong     = "Name is too long"
	msgTitleTooShort   = "Title is too short."
	msgTitleTooLong    = "Title is too long."
	msgISBNTooShort    = "ISBN is too short."
	msgISBNTooLong     = "ISBN is too long."
	msgInvalidEmail    = "Email is not in valid form"
	msgWeakPassword    = "Password must be at least 8 characters long, with one uppercase, one number, and one special character."
	msgInvalidRole     = "Role is not valid. Must be 'admin' or 'member'."
	msgInvalidDate     = "The input is not a valid date."
	msgDateInPast      = "Date cannot be in the past."
	msgDateTooFarAhead = "Date can't be more than 60 days ahead."
	msgNegativeNumber  = "Number must be a non negative int"
	msgTooManyCopies   = "Available copies cannot be more than total copies."

	maxDaysAhead = 60

	minNameLen  = 3
	maxNameLen  = 20
	minTitleLen = 2
	maxTitleLen = 255
	minISBNLen  = 8
	maxISBNLen  = 20
	minPassLen  = 8
)

var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// ReferenceChecker resolves foreign-key existence during validation.
// Storage engines implement it; passing nil skips existence checks so pure
// field rules can be evaluated without storage.
type ReferenceChecker interface {
	RefExists(ctx context.Context, table string, id int64) (bool, error)
}

// checkFunc evaluates one field. It returns the violation reason ("" when the
// field passes) or a hard storage error from a reference lookup.
type checkFunc func(ctx context.Context, refs ReferenceChecker) (string, error)

// fieldRule pairs a field name with its check. Each entity declares an
// ordered list of these; the order is the order violations are reported in.
type fieldRule struct {
	field string
	check checkFunc
}

// Validatable is implemented by every entity type via a statically declared
// ordered rule list.
type Validatable interface {
	validationRules() []fieldRule
}

// Validate runs every field rule of the entity and aggregates all violations
// into one ValidationError. It never stops at the first violated field; a
// hard storage failure during a reference lookup aborts with a joined
// ErrDatabaseOperation instead.
func Validate(ctx context.Context, refs ReferenceChecker, entity Validatable) error {
	verr := &ValidationError{}

	for _, rule := range entity.validationRules() {
		reason, err := rule.check(ctx, refs)
		if err != nil {
			return errors.Join(ErrDatabaseOperation, err)
		}
		if reason != "" {
			verr.add(rule.field, reason)
		}
	}

	if len(verr.fields) > 0 {
		return verr
	}

	return nil
}

// ---------------------------------------------------------------------------
// Rule combinators
// ---------------------------------------------------------------------------

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// textRule checks a required text field: emptiness short-circuits, then the
// ASCII check, then the extra checks in order, first violation wins.
func textRule(value string, extra ...func(string) string) checkFunc {
	return func(_ context.Context, _ ReferenceChecker) (string, error) {
		if value == "" {
			return msgEmptyField, nil
		}
		if !isASCII(value) {
			return msgNotEnglish, nil
		}
		for _, check := range extra {
			if reason := check(value); reason != "" {
				return reason, nil
			}
		}
		return "", nil
	}
}

func lengthBetween(minLen int, maxLen int, tooShort string, tooLong string) func(string) string {
	return func(value string) string {
		if len(value) < minLen {
			return tooShort
		}
		if len(value) > maxLen {
			return tooLong
		}
		return ""
	}
}

func emailCheck(value string) string {
	if !emailPattern.MatchString(value) {
		return msgInvalidEmail
	}
	return ""
}

func passwordCheck(value string) string {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if len(value) < minPassLen || !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return msgWeakPassword
	}
	return ""
}

func roleCheck(value string) string {
	if Role(value) != RoleMember && Role(value) != RoleAdmin {
		return msgInvalidRole
	}
	return ""
}

// foreignKeyRule checks the id is a non-negative whole number and, when refs
// is given, that a row with that id exists in the referenced table.
func foreignKeyRule(table string, id int64) checkFunc {
	return func(ctx context.Context, refs ReferenceChecker) (string, error) {
		if id < 0 {
			return msgNegativeNumber, nil
		}
		if refs == nil {
			return "", nil
		}
		exists, err := refs.RefExists(ctx, table, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return fmt.Sprintf("No entry found in '%s' with id=%d", table, id), nil
		}
		return "", nil
	}
}

// dateRule checks a required day-granular date. The floor (not in the past)
// and ceiling (not more than 60 days ahead) apply on creation only; persisted
// entities carry legitimately old dates.
func dateRule(entityID int64, d time.Time) checkFunc {
	return func(_ context.Context, _ ReferenceChecker) (string, error) {
		if d.IsZero() {
			return msgInvalidDate, nil
		}
		if entityID != 0 {
			return "", nil
		}
		today := DateOnly(time.Now())
		day := DateOnly(d)
		if day.Before(today) {
			return msgDateInPast, nil
		}
		if day.After(today.AddDate(0, 0, maxDaysAhead)) {
			return msgDateTooFarAhead, nil
		}
		return "", nil
	}
}

// optionalDateRule checks a nullable date only for well-formedness when set.
func optionalDateRule(d *time.Time) checkFunc {
	return func(_ context.Context, _ ReferenceChecker) (string, error) {
		if d != nil && d.IsZero() {
			return msgInvalidDate, nil
		}
		return "", nil
	}
}

func wholeNumberRule(n int) checkFunc {
	return func(_ context.Context, _ ReferenceChecker) (string, error) {
		if n < 0 {
			return msgNegativeNumber, nil
		}
		return "", nil
	}
}

func availableCopiesRule(available int, total int) checkFunc {
	return func(_ context.Context, _ ReferenceChecker) (string, error) {
		if available < 0 {
			return msgNegativeNumber, nil
		}
		if available > total {
			return msgTooManyCopies, nil
		}
		return "", nil
	}
}

func nonNegativeAmountRule(n int64) checkFunc {
	return func(_ context.Context, _ ReferenceChecker) (string, error) {
		if n < 0 {
			return msgNegativeNumber, nil
		}
		return "", nil
	}
}

// ---------------------------------------------------------------------------
// Per-entity rule lists
// ---------------------------------------------------------------------------

func nameOnlyRules(name string) []fieldRule {
	return []fieldRule{
		{field: "name", check: textRule(name, lengthBetween(minNameLen, maxNameLen, msgNameTooShort, msgNameTooLong))},
	}
}

func (a Author) validationRules() []fieldRule {
	return nameOnlyRules(a.Name)
}

func (p Publisher) validationRules() []fieldRule {
	return nameOnlyRules(p.Name)
}

func (c Category) validationRules() []fieldRule {
	return nameOnlyRules(c.Name)
}

func (b Book) validationRules() []fieldRule {
	return []fieldRule{
		{field: "isbn", check: textRule(b.ISBN, lengthBetween(minISBNLen, maxISBNLen, msgISBNTooShort, msgISBNTooLong))},
		{field: "title", check: textRule(b.Title, lengthBetween(minTitleLen, maxTitleLen, msgTitleTooShort, msgTitleTooLong))},
		{field: "author_id", check: foreignKeyRule(TableAuthors, b.AuthorID)},
		{field: "publisher_id", check: foreignKeyRule(TablePublishers, b.PublisherID)},
		{field: "category_id", check: foreignKeyRule(TableCategories, b.CategoryID)},
		{field: "total_copies", check: wholeNumberRule(b.TotalCopies)},
		{field: "available_copies", check: availableCopiesRule(b.AvailableCopies, b.TotalCopies)},
	}
}

func (u User) validationRules() []fieldRule {
	return []fieldRule{
		{field: "name", check: textRule(u.Name, lengthBetween(minNameLen, maxNameLen, msgNameTooShort, msgNameTooLong))},
		{field: "email", check: textRule(u.Email, emailCheck)},
		{field: "password", check: textRule(u.Password, passwordCheck)},
		{field: "joined_date", check: dateRule(u.ID, u.JoinedDate)},
		{field: "role", check: textRule(string(u.Role), roleCheck)},
	}
}

func (l Loan) validationRules() []fieldRule {
	return []fieldRule{
		{field: "user_id", check: foreignKeyRule(TableUsers, l.UserID)},
		{field: "book_id", check: foreignKeyRule(TableBooks, l.BookID)},
		{field: "loan_date", check: dateRule(l.ID, l.LoanDate)},
		{field: "due_date", check: dateRule(l.ID, l.DueDate)},
		{field: "return_date", check: optionalDateRule(l.ReturnDate)},
	}
}

func (f Fine) validationRules() []fieldRule {
	return []fieldRule{
		{field: "user_id", check: foreignKeyRule(TableUsers, f.UserID)},
		{field: "loan_id", check: foreignKeyRule(TableLoans, f.LoanID)},
		{field: "amount", check: nonNegativeAmountRule(f.Amount)},
	}
}
