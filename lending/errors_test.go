package lending_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/libsys/lending-engine-go/lending"
)

func Test_NotFoundError_MatchesSentinel(t *testing.T) {
	// arrange
	err := fmt.Errorf("loading: %w", &lending.NotFoundError{Kind: lending.KindBook, Key: "isbn=978-0140177398"})

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
	assert.NotErrorIs(t, err, lending.ErrDuplicate)

	var notFound *lending.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, lending.KindBook, notFound.Kind)
}

func Test_DuplicateError_MatchesSentinel(t *testing.T) {
	// arrange
	err := &lending.DuplicateError{Kind: lending.KindUser, Field: lending.DuplicateEmail, Value: "alice@example.com"}

	// assert
	assert.ErrorIs(t, err, lending.ErrDuplicate)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "alice@example.com")
}

func Test_InUseError_ListsDependents(t *testing.T) {
	// arrange
	err := &lending.InUseError{
		Kind:       lending.KindAuthor,
		Key:        "id=3",
		Referrer:   lending.KindBook,
		Dependents: []string{"Of Mice and Men", "East of Eden"},
	}

	// assert
	assert.ErrorIs(t, err, lending.ErrInUse)
	assert.Contains(t, err.Error(), "Of Mice and Men")
	assert.Contains(t, err.Error(), "East of Eden")
}

func Test_ValidationError_KeepsRuleOrder(t *testing.T) {
	// arrange
	verr := lending.NewValidationError("isbn", "ISBN is too short.")

	// assert
	assert.ErrorIs(t, verr, lending.ErrValidationFailed)
	assert.Equal(t, "ISBN is too short.", verr.Reason("isbn"))
	assert.Empty(t, verr.Reason("title"))
}

func Test_ErrDatabaseOperation_SurvivesJoin(t *testing.T) {
	// arrange
	cause := errors.New("connection refused")
	err := errors.Join(lending.ErrDatabaseOperation, cause)

	// assert
	assert.ErrorIs(t, err, lending.ErrDatabaseOperation)
	assert.ErrorIs(t, err, cause)
}
