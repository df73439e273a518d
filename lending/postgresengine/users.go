package postgresengine

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/postgresengine/internal/adapters"
)

// adminLockKey is the advisory lock key serializing admin-role saves, so two
// concurrent "first admin" registrations cannot both pass the role scan.
const adminLockKey = 7342001

func userColumns() []any {
	return []any{colID, colName, colEmail, colPassword, colJoinedDate, colRole}
}

func scanUser(rows adapters.DBRows, user *lending.User) error {
	var role string

	err := rows.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.JoinedDate,
		&role,
	)
	if err != nil {
		return err
	}

	user.Role = lending.Role(role)

	return nil
}

func userRecord(user lending.User) goqu.Record {
	return goqu.Record{
		colName:       user.Name,
		colEmail:      user.Email,
		colPassword:   user.Password,
		colJoinedDate: user.JoinedDate,
		colRole:       string(user.Role),
	}
}

func (s *Store) UserByID(ctx context.Context, id int64) (lending.User, error) {
	return s.userWhere(ctx, goqu.C(colID).Eq(id), keyID(id))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (lending.User, error) {
	return s.userWhere(ctx, goqu.C(colEmail).Eq(email), keyField(colEmail, email))
}

func (s *Store) userWhere(ctx context.Context, where exp.Expression, key string) (lending.User, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(lending.TableUsers)).
		Select(userColumns()...).
		Where(where).
		ToSQL()
	if toSQLErr != nil {
		return lending.User{}, operationError(toSQLErr)
	}

	var user lending.User

	found, err := s.fetchOne(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return scanUser(rows, &user)
	})
	if err != nil {
		return lending.User{}, err
	}
	if !found {
		return lending.User{}, &lending.NotFoundError{Kind: lending.KindUser, Key: key}
	}

	return user, nil
}

func (s *Store) Users(ctx context.Context) ([]lending.User, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(lending.TableUsers)).
		Select(userColumns()...).
		Order(goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, operationError(toSQLErr)
	}

	var users []lending.User

	err := s.fetchAll(ctx, sqlQuery, func(rows adapters.DBRows) error {
		var user lending.User
		if scanErr := scanUser(rows, &user); scanErr != nil {
			return scanErr
		}

		users = append(users, user)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

// LockUser takes a row-level write lock on the user. It must run inside a
// transaction; the loan lifecycle uses it to serialize per-user borrowing.
func (s *Store) LockUser(ctx context.Context, id int64) error {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(lending.TableUsers)).
		Select(colID).
		Where(goqu.C(colID).Eq(id)).
		ForUpdate(exp.Wait).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	var locked int64

	found, err := s.fetchOne(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&locked)
	})
	if err != nil {
		return err
	}
	if !found {
		return &lending.NotFoundError{Kind: lending.KindUser, Key: keyID(id)}
	}

	return nil
}

// SaveUser validates and persists the user, creating it when its ID is zero
// and updating it otherwise. A plaintext password is bcrypt-hashed before the
// write; an already hashed one is stored as-is. Saving a user with the admin
// role runs in its own transaction to enforce the single-admin invariant.
func (s *Store) SaveUser(ctx context.Context, user *lending.User) error {
	if err := lending.Validate(ctx, s, user); err != nil {
		return err
	}

	if !lending.IsHashedPassword(user.Password) {
		hashed, hashErr := lending.HashPassword(user.Password)
		if hashErr != nil {
			return operationError(hashErr)
		}
		user.Password = hashed
	}

	if user.Role == lending.RoleAdmin {
		return s.withTx(ctx, func(txStore *Store) error {
			if err := txStore.guardSingleAdmin(ctx, user.ID); err != nil {
				return err
			}
			return txStore.persistUser(ctx, user)
		})
	}

	return s.persistUser(ctx, user)
}

// guardSingleAdmin rejects the save when a different user already holds the
// admin role. It serializes on an advisory lock so the scan cannot race with
// another admin save.
func (s *Store) guardSingleAdmin(ctx context.Context, userID int64) error {
	lockQuery := fmt.Sprintf("SELECT pg_advisory_xact_lock(%d)", adminLockKey)

	rows, err := s.executeQuery(ctx, lockQuery)
	if err != nil {
		return err
	}
	s.closeRows(ctx, rows)

	scanQuery, _, toSQLErr := builder().
		From(s.table(lending.TableUsers)).
		Select(colID).
		Where(goqu.C(colRole).Eq(string(lending.RoleAdmin))).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	conflict := false

	scanErr := s.fetchAll(ctx, scanQuery, func(dbRows adapters.DBRows) error {
		var id int64
		if err := dbRows.Scan(&id); err != nil {
			return err
		}
		if id != userID {
			conflict = true
		}
		return nil
	})
	if scanErr != nil {
		return scanErr
	}

	if conflict {
		return lending.ErrAdminAlreadyExists
	}

	return nil
}

func (s *Store) persistUser(ctx context.Context, user *lending.User) error {
	if user.ID == 0 {
		sqlQuery, _, toSQLErr := builder().
			Insert(s.table(lending.TableUsers)).
			Rows(userRecord(*user)).
			Returning(colID).
			ToSQL()
		if toSQLErr != nil {
			return operationError(toSQLErr)
		}

		newID, insertErr := s.insertReturningID(ctx, sqlQuery)
		if insertErr != nil {
			return s.classifySaveError(insertErr, lending.KindUser, lending.DuplicateEmail, user.Email)
		}

		user.ID = newID
		s.logOperation(ctx, "created user", logAttrTable, lending.TableUsers)

		return nil
	}

	sqlQuery, _, toSQLErr := builder().
		Update(s.table(lending.TableUsers)).
		Set(userRecord(*user)).
		Where(goqu.C(colID).Eq(user.ID)).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	affected, updateErr := s.execAffected(ctx, sqlQuery)
	if updateErr != nil {
		return s.classifySaveError(updateErr, lending.KindUser, lending.DuplicateEmail, user.Email)
	}
	if affected == 0 {
		return &lending.NotFoundError{Kind: lending.KindUser, Key: keyID(user.ID)}
	}

	s.logOperation(ctx, "updated user", logAttrTable, lending.TableUsers)

	return nil
}

// DeleteUser removes the user unless loans or fines still reference it.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.guardedDeleteByID(ctx, lending.TableUsers, lending.KindUser, id, userDependents())
}

// DeleteUserByEmail resolves the user by email and removes it unless loans
// or fines still reference it.
func (s *Store) DeleteUserByEmail(ctx context.Context, email string) error {
	user, err := s.UserByEmail(ctx, email)
	if err != nil {
		return err
	}

	return s.DeleteUser(ctx, user.ID)
}
