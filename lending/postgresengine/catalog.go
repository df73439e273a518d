package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/postgresengine/internal/adapters"
)

// Authors, publishers and categories share the same shape: an id and a
// unique name. The generic helpers below serve all three directories.

type namedDirectory struct {
	table string
	kind  lending.EntityKind
}

var (
	authorDirectory    = namedDirectory{table: lending.TableAuthors, kind: lending.KindAuthor}
	publisherDirectory = namedDirectory{table: lending.TablePublishers, kind: lending.KindPublisher}
	categoryDirectory  = namedDirectory{table: lending.TableCategories, kind: lending.KindCategory}
)

/*** Authors ***/

func (s *Store) AuthorByID(ctx context.Context, id int64) (lending.Author, error) {
	entityID, name, err := s.namedRowByID(ctx, authorDirectory, id)
	return lending.Author{ID: entityID, Name: name}, err
}

func (s *Store) AuthorByName(ctx context.Context, name string) (lending.Author, error) {
	entityID, entityName, err := s.namedRowByName(ctx, authorDirectory, name)
	return lending.Author{ID: entityID, Name: entityName}, err
}

func (s *Store) Authors(ctx context.Context) ([]lending.Author, error) {
	var authors []lending.Author

	err := s.namedRows(ctx, authorDirectory, func(id int64, name string) {
		authors = append(authors, lending.Author{ID: id, Name: name})
	})

	return authors, err
}

// SaveAuthor validates and persists the author, creating it when its ID is
// zero and updating it otherwise. The generated ID is written back.
func (s *Store) SaveAuthor(ctx context.Context, author *lending.Author) error {
	return s.saveNamedRow(ctx, authorDirectory, &author.ID, author.Name, author)
}

// DeleteAuthor removes the author unless books still reference it.
func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	return s.guardedDeleteByID(ctx, authorDirectory.table, authorDirectory.kind, id, bookDependents(colAuthorID))
}

/*** Publishers ***/

func (s *Store) PublisherByID(ctx context.Context, id int64) (lending.Publisher, error) {
	entityID, name, err := s.namedRowByID(ctx, publisherDirectory, id)
	return lending.Publisher{ID: entityID, Name: name}, err
}

func (s *Store) PublisherByName(ctx context.Context, name string) (lending.Publisher, error) {
	entityID, entityName, err := s.namedRowByName(ctx, publisherDirectory, name)
	return lending.Publisher{ID: entityID, Name: entityName}, err
}

func (s *Store) Publishers(ctx context.Context) ([]lending.Publisher, error) {
	var publishers []lending.Publisher

	err := s.namedRows(ctx, publisherDirectory, func(id int64, name string) {
		publishers = append(publishers, lending.Publisher{ID: id, Name: name})
	})

	return publishers, err
}

func (s *Store) SavePublisher(ctx context.Context, publisher *lending.Publisher) error {
	return s.saveNamedRow(ctx, publisherDirectory, &publisher.ID, publisher.Name, publisher)
}

func (s *Store) DeletePublisher(ctx context.Context, id int64) error {
	return s.guardedDeleteByID(ctx, publisherDirectory.table, publisherDirectory.kind, id, bookDependents(colPublisherID))
}

/*** Categories ***/

func (s *Store) CategoryByID(ctx context.Context, id int64) (lending.Category, error) {
	entityID, name, err := s.namedRowByID(ctx, categoryDirectory, id)
	return lending.Category{ID: entityID, Name: name}, err
}

func (s *Store) CategoryByName(ctx context.Context, name string) (lending.Category, error) {
	entityID, entityName, err := s.namedRowByName(ctx, categoryDirectory, name)
	return lending.Category{ID: entityID, Name: entityName}, err
}

func (s *Store) Categories(ctx context.Context) ([]lending.Category, error) {
	var categories []lending.Category

	err := s.namedRows(ctx, categoryDirectory, func(id int64, name string) {
		categories = append(categories, lending.Category{ID: id, Name: name})
	})

	return categories, err
}

func (s *Store) SaveCategory(ctx context.Context, category *lending.Category) error {
	return s.saveNamedRow(ctx, categoryDirectory, &category.ID, category.Name, category)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.guardedDeleteByID(ctx, categoryDirectory.table, categoryDirectory.kind, id, bookDependents(colCategoryID))
}

/*** shared directory plumbing ***/

func (s *Store) namedRowByID(ctx context.Context, dir namedDirectory, id int64) (int64, string, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(dir.table)).
		Select(colID, colName).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if toSQLErr != nil {
		return 0, "", operationError(toSQLErr)
	}

	return s.scanNamedRow(ctx, dir, sqlQuery, keyID(id))
}

func (s *Store) namedRowByName(ctx context.Context, dir namedDirectory, name string) (int64, string, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(dir.table)).
		Select(colID, colName).
		Where(goqu.C(colName).Eq(name)).
		ToSQL()
	if toSQLErr != nil {
		return 0, "", operationError(toSQLErr)
	}

	return s.scanNamedRow(ctx, dir, sqlQuery, keyField(colName, name))
}

func (s *Store) scanNamedRow(ctx context.Context, dir namedDirectory, sqlQuery string, key string) (int64, string, error) {
	var (
		id   int64
		name string
	)

	found, err := s.fetchOne(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&id, &name)
	})
	if err != nil {
		return 0, "", err
	}
	if !found {
		return 0, "", &lending.NotFoundError{Kind: dir.kind, Key: key}
	}

	return id, name, nil
}

func (s *Store) namedRows(ctx context.Context, dir namedDirectory, collect func(id int64, name string)) error {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(dir.table)).
		Select(colID, colName).
		Order(goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	return s.fetchAll(ctx, sqlQuery, func(rows adapters.DBRows) error {
		var (
			id   int64
			name string
		)
		if scanErr := rows.Scan(&id, &name); scanErr != nil {
			return scanErr
		}

		collect(id, name)

		return nil
	})
}

func (s *Store) saveNamedRow(ctx context.Context, dir namedDirectory, id *int64, name string, entity lending.Validatable) error {
	if err := lending.Validate(ctx, s, entity); err != nil {
		return err
	}

	if *id == 0 {
		sqlQuery, _, toSQLErr := builder().
			Insert(s.table(dir.table)).
			Rows(goqu.Record{colName: name}).
			Returning(colID).
			ToSQL()
		if toSQLErr != nil {
			return operationError(toSQLErr)
		}

		newID, insertErr := s.insertReturningID(ctx, sqlQuery)
		if insertErr != nil {
			return s.classifySaveError(insertErr, dir.kind, lending.DuplicateName, name)
		}

		*id = newID
		s.logOperation(ctx, "created "+string(dir.kind), logAttrTable, dir.table)

		return nil
	}

	sqlQuery, _, toSQLErr := builder().
		Update(s.table(dir.table)).
		Set(goqu.Record{colName: name}).
		Where(goqu.C(colID).Eq(*id)).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	affected, updateErr := s.execAffected(ctx, sqlQuery)
	if updateErr != nil {
		return s.classifySaveError(updateErr, dir.kind, lending.DuplicateName, name)
	}
	if affected == 0 {
		return &lending.NotFoundError{Kind: dir.kind, Key: keyID(*id)}
	}

	s.logOperation(ctx, "updated "+string(dir.kind), logAttrTable, dir.table)

	return nil
}

// classifySaveError translates a unique-violation signal into the domain
// duplicate error and wraps everything else as an operation failure.
func (s *Store) classifySaveError(err error, kind lending.EntityKind, field lending.DuplicateField, value string) error {
	if violation, ok := adapters.ClassifyConstraint(err); ok && violation.Kind == adapters.UniqueViolation {
		return &lending.DuplicateError{Kind: kind, Field: field, Value: value}
	}

	return operationError(err)
}
