package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/postgresengine/internal/adapters"
)

// dependentProbe describes how to enumerate the rows of one referring table
// that block a delete. The label expression renders a row as a human-readable
// dependent in the InUse error: book titles, loan and fine ids.
type dependentProbe struct {
	referrer lending.EntityKind
	table    string
	fkColumn string
	label    string
}

func bookDependents(fkColumn string) []dependentProbe {
	return []dependentProbe{
		{referrer: lending.KindBook, table: lending.TableBooks, fkColumn: fkColumn, label: colTitle},
	}
}

func loanDependents(fkColumn string) []dependentProbe {
	return []dependentProbe{
		{referrer: lending.KindLoan, table: lending.TableLoans, fkColumn: fkColumn, label: colID},
	}
}

func fineDependents() []dependentProbe {
	return []dependentProbe{
		{referrer: lending.KindFine, table: lending.TableFines, fkColumn: colLoanID, label: colID},
	}
}

func userDependents() []dependentProbe {
	return []dependentProbe{
		{referrer: lending.KindLoan, table: lending.TableLoans, fkColumn: colUserID, label: colID},
		{referrer: lending.KindFine, table: lending.TableFines, fkColumn: colUserID, label: colID},
	}
}

// guardedDeleteByID deletes a single row and translates a foreign-key
// violation into an InUse error listing the blocking dependents. The delete
// never cascades: the row stays untouched when dependents exist.
func (s *Store) guardedDeleteByID(
	ctx context.Context,
	table string,
	kind lending.EntityKind,
	id int64,
	probes []dependentProbe,
) error {
	sqlQuery, _, toSQLErr := builder().
		Delete(s.table(table)).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	affected, deleteErr := s.executeGuardedDelete(ctx, sqlQuery, kind, keyID(id), id, probes)
	if deleteErr != nil {
		return deleteErr
	}
	if affected == 0 {
		return &lending.NotFoundError{Kind: kind, Key: keyID(id)}
	}

	s.logOperation(ctx, "deleted "+string(kind), logAttrTable, table)

	return nil
}

func (s *Store) executeGuardedDelete(
	ctx context.Context,
	sqlQuery string,
	kind lending.EntityKind,
	key string,
	id int64,
	probes []dependentProbe,
) (int64, error) {
	affected, deleteErr := s.execAffected(ctx, sqlQuery)
	if deleteErr == nil {
		return affected, nil
	}

	violation, ok := adapters.ClassifyConstraint(deleteErr)
	if !ok || violation.Kind != adapters.ForeignKeyViolation {
		return 0, operationError(deleteErr)
	}

	for _, probe := range probes {
		dependents, probeErr := s.dependentsOf(ctx, probe, id)
		if probeErr != nil {
			return 0, probeErr
		}
		if len(dependents) > 0 {
			return 0, &lending.InUseError{
				Kind:       kind,
				Key:        key,
				Referrer:   probe.referrer,
				Dependents: dependents,
			}
		}
	}

	// The violation came from a referrer no probe covers.
	return 0, operationError(deleteErr)
}

// dependentsOf lists the row labels in one referring table for the given id.
func (s *Store) dependentsOf(ctx context.Context, probe dependentProbe, id int64) ([]string, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(probe.table)).
		Select(goqu.Cast(goqu.C(probe.label), "TEXT")).
		Where(goqu.C(probe.fkColumn).Eq(id)).
		Order(goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, operationError(toSQLErr)
	}

	var dependents []string

	err := s.fetchAll(ctx, sqlQuery, func(rows adapters.DBRows) error {
		var label string
		if scanErr := rows.Scan(&label); scanErr != nil {
			return scanErr
		}

		dependents = append(dependents, label)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return dependents, nil
}
