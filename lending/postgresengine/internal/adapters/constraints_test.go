package adapters_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libsys/lending-engine-go/lending/postgresengine/internal/adapters"
)

func Test_ClassifyConstraint_PGXUniqueViolation(t *testing.T) {
	// arrange
	err := &pgconn.PgError{Code: "23505", ConstraintName: "authors_name_key", TableName: "authors"}

	// act
	violation, ok := adapters.ClassifyConstraint(err)

	// assert
	require.True(t, ok)
	assert.Equal(t, adapters.UniqueViolation, violation.Kind)
	assert.Equal(t, "authors_name_key", violation.ConstraintName)
	assert.Equal(t, "authors", violation.TableName)
}

func Test_ClassifyConstraint_PGXForeignKeyViolation(t *testing.T) {
	// arrange
	err := &pgconn.PgError{Code: "23503", ConstraintName: "books_author_id_fkey", TableName: "books"}

	// act
	violation, ok := adapters.ClassifyConstraint(err)

	// assert
	require.True(t, ok)
	assert.Equal(t, adapters.ForeignKeyViolation, violation.Kind)
	assert.Equal(t, "books", violation.TableName)
}

func Test_ClassifyConstraint_PQErrors(t *testing.T) {
	testCases := []struct {
		code     string
		expected adapters.ConstraintKind
	}{
		{code: "23505", expected: adapters.UniqueViolation},
		{code: "23503", expected: adapters.ForeignKeyViolation},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			// arrange
			err := &pq.Error{Code: pq.ErrorCode(tc.code), Constraint: "some_constraint", Table: "some_table"}

			// act
			violation, ok := adapters.ClassifyConstraint(err)

			// assert
			require.True(t, ok)
			assert.Equal(t, tc.expected, violation.Kind)
		})
	}
}

func Test_ClassifyConstraint_WrappedError(t *testing.T) {
	// arrange
	inner := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	err := fmt.Errorf("exec failed: %w", inner)

	// act
	violation, ok := adapters.ClassifyConstraint(err)

	// assert
	require.True(t, ok)
	assert.Equal(t, adapters.UniqueViolation, violation.Kind)
}

func Test_ClassifyConstraint_UnrelatedErrors(t *testing.T) {
	// arrange
	testCases := []error{
		errors.New("connection refused"),
		&pgconn.PgError{Code: "40001"}, // serialization failure is not a constraint signal
		nil,
	}

	for _, err := range testCases {
		// act
		_, ok := adapters.ClassifyConstraint(err)

		// assert
		assert.False(t, ok)
	}
}
