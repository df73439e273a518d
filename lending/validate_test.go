package lending_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libsys/lending-engine-go/lending"
)

// fakeRefs is a ReferenceChecker backed by a static table -> ids map.
type fakeRefs struct {
	rows map[string][]int64
	err  error
}

func (f *fakeRefs) RefExists(_ context.Context, table string, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, existing := range f.rows[table] {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

func Test_Validate_Success_ForValidAuthor(t *testing.T) {
	// arrange
	author := lending.Author{Name: "John Steinbeck"}

	// act
	err := lending.Validate(context.Background(), nil, author)

	// assert
	assert.NoError(t, err)
}

func Test_Validate_Fails_WhenAuthorNameTooShort(t *testing.T) {
	// arrange
	author := lending.Author{Name: "Jo"}

	// act
	err := lending.Validate(context.Background(), nil, author)

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, lending.ErrValidationFailed)

	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name is too short", verr.Reason("name"))
}

func Test_Validate_Fails_WhenAuthorNameEmpty(t *testing.T) {
	// arrange
	author := lending.Author{}

	// act
	err := lending.Validate(context.Background(), nil, author)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Field can't be empty", verr.Reason("name"))
}

func Test_Validate_Fails_WhenAuthorNameNotASCII(t *testing.T) {
	// arrange
	author := lending.Author{Name: "日本語の名前"}

	// act
	err := lending.Validate(context.Background(), nil, author)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Text must be fully in English.", verr.Reason("name"))
}

func Test_Validate_AggregatesAllViolatedFields(t *testing.T) {
	// arrange
	book := lending.Book{
		ISBN:            "123",
		Title:           "x",
		AuthorID:        1,
		PublisherID:     1,
		CategoryID:      1,
		TotalCopies:     2,
		AvailableCopies: 5,
	}
	refs := &fakeRefs{rows: map[string][]int64{
		lending.TableAuthors:    {1},
		lending.TablePublishers: {1},
		lending.TableCategories: {1},
	}}

	// act
	err := lending.Validate(context.Background(), refs, book)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := verr.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "isbn", fields[0].Field)
	assert.Equal(t, "ISBN is too short.", fields[0].Reason)
	assert.Equal(t, "title", fields[1].Field)
	assert.Equal(t, "Title is too short.", fields[1].Reason)
	assert.Equal(t, "available_copies", fields[2].Field)
	assert.Equal(t, "Available copies cannot be more than total copies.", fields[2].Reason)
}

func Test_Validate_Fails_WhenBookReferencesMissingAuthor(t *testing.T) {
	// arrange
	book := lending.Book{
		ISBN:            "978-0140177398",
		Title:           "Of Mice and Men",
		AuthorID:        42,
		PublisherID:     1,
		CategoryID:      1,
		TotalCopies:     3,
		AvailableCopies: 3,
	}
	refs := &fakeRefs{rows: map[string][]int64{
		lending.TablePublishers: {1},
		lending.TableCategories: {1},
	}}

	// act
	err := lending.Validate(context.Background(), refs, book)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "No entry found in 'authors' with id=42", verr.Reason("author_id"))
	assert.Empty(t, verr.Reason("publisher_id"))
	assert.Empty(t, verr.Reason("category_id"))
}

func Test_Validate_SkipsReferenceChecks_WithoutReferenceChecker(t *testing.T) {
	// arrange
	book := lending.Book{
		ISBN:            "978-0140177398",
		Title:           "Of Mice and Men",
		AuthorID:        42,
		PublisherID:     42,
		CategoryID:      42,
		TotalCopies:     3,
		AvailableCopies: 3,
	}

	// act
	err := lending.Validate(context.Background(), nil, book)

	// assert
	assert.NoError(t, err)
}

func Test_Validate_AbortsWithDatabaseError_WhenReferenceLookupFails(t *testing.T) {
	// arrange
	book := lending.Book{
		ISBN:            "978-0140177398",
		Title:           "Of Mice and Men",
		AuthorID:        1,
		PublisherID:     1,
		CategoryID:      1,
		TotalCopies:     3,
		AvailableCopies: 3,
	}
	refs := &fakeRefs{err: errors.New("connection refused")}

	// act
	err := lending.Validate(context.Background(), refs, book)

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, lending.ErrDatabaseOperation)
	assert.NotErrorIs(t, err, lending.ErrValidationFailed)
}

func Test_Validate_Fails_WhenEmailMalformed(t *testing.T) {
	testCases := []struct {
		name  string
		email string
	}{
		{name: "missing at sign", email: "alice.example.com"},
		{name: "missing domain", email: "alice@"},
		{name: "missing tld", email: "alice@example"},
		{name: "spaces", email: "alice smith@example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			user := lending.BuildUser("Alice Smith", tc.email, "Str0ng!Pass")

			// act
			err := lending.Validate(context.Background(), nil, user)

			// assert
			var verr *lending.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Email is not in valid form", verr.Reason("email"))
		})
	}
}

func Test_Validate_Fails_WhenPasswordWeak(t *testing.T) {
	testCases := []struct {
		name     string
		password string
	}{
		{name: "too short", password: "S1!a"},
		{name: "no uppercase", password: "weakpass1!"},
		{name: "no digit", password: "Weakpass!!"},
		{name: "no special character", password: "Weakpass11"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			user := lending.BuildUser("Alice Smith", "alice@example.com", tc.password)

			// act
			err := lending.Validate(context.Background(), nil, user)

			// assert
			var verr *lending.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(
				t,
				"Password must be at least 8 characters long, with one uppercase, one number, and one special character.",
				verr.Reason("password"),
			)
		})
	}
}

func Test_Validate_Success_ForFreshUserWithDefaults(t *testing.T) {
	// arrange
	user := lending.BuildUser("Alice Smith", "alice@example.com", "Str0ng!Pass")

	// act
	err := lending.Validate(context.Background(), nil, user)

	// assert
	assert.NoError(t, err)
}

func Test_Validate_Fails_WhenNewUserJoinedDateInPast(t *testing.T) {
	// arrange
	user := lending.BuildUser("Alice Smith", "alice@example.com", "Str0ng!Pass")
	user.JoinedDate = lending.DateOnly(time.Now().AddDate(0, 0, -2))

	// act
	err := lending.Validate(context.Background(), nil, user)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Date cannot be in the past.", verr.Reason("joined_date"))
}

func Test_Validate_AllowsPastDates_ForPersistedUser(t *testing.T) {
	// arrange
	user := lending.BuildUser("Alice Smith", "alice@example.com", "Str0ng!Pass")
	user.ID = 7
	user.JoinedDate = lending.DateOnly(time.Now().AddDate(-1, 0, 0))

	// act
	err := lending.Validate(context.Background(), nil, user)

	// assert
	assert.NoError(t, err)
}

func Test_Validate_Fails_WhenNewLoanDueDateTooFarAhead(t *testing.T) {
	// arrange
	refs := &fakeRefs{rows: map[string][]int64{
		lending.TableUsers: {1},
		lending.TableBooks: {1},
	}}
	loan := lending.Loan{
		UserID:   1,
		BookID:   1,
		LoanDate: lending.DateOnly(time.Now()),
		DueDate:  lending.DateOnly(time.Now().AddDate(0, 0, 61)),
	}

	// act
	err := lending.Validate(context.Background(), refs, loan)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Date can't be more than 60 days ahead.", verr.Reason("due_date"))
}

func Test_Validate_Fails_WhenRoleUnknown(t *testing.T) {
	// arrange
	user := lending.BuildUser("Alice Smith", "alice@example.com", "Str0ng!Pass")
	user.Role = "librarian"

	// act
	err := lending.Validate(context.Background(), nil, user)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Role is not valid. Must be 'admin' or 'member'.", verr.Reason("role"))
}

func Test_Validate_Fails_WhenFineAmountNegative(t *testing.T) {
	// arrange
	fine := lending.Fine{UserID: 1, LoanID: 1, Amount: -25}

	// act
	err := lending.Validate(context.Background(), nil, fine)

	// assert
	var verr *lending.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Number must be a non negative int", verr.Reason("amount"))
}
