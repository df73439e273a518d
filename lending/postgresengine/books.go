package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/libsys/lending-engine-go/lending"
	"github.com/libsys/lending-engine-go/lending/postgresengine/internal/adapters"
)

func bookColumns() []any {
	return []any{colID, colISBN, colTitle, colAuthorID, colPublisherID, colCategoryID, colTotalCopies, colAvailableCopies}
}

func scanBook(rows adapters.DBRows, book *lending.Book) error {
	return rows.Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		&book.AuthorID,
		&book.PublisherID,
		&book.CategoryID,
		&book.TotalCopies,
		&book.AvailableCopies,
	)
}

func bookRecord(book lending.Book) goqu.Record {
	return goqu.Record{
		colISBN:            book.ISBN,
		colTitle:           book.Title,
		colAuthorID:        book.AuthorID,
		colPublisherID:     book.PublisherID,
		colCategoryID:      book.CategoryID,
		colTotalCopies:     book.TotalCopies,
		colAvailableCopies: book.AvailableCopies,
	}
}

func (s *Store) BookByID(ctx context.Context, id int64) (lending.Book, error) {
	return s.bookWhere(ctx, goqu.C(colID).Eq(id), keyID(id), false)
}

func (s *Store) BookByISBN(ctx context.Context, isbn string) (lending.Book, error) {
	return s.bookWhere(ctx, goqu.C(colISBN).Eq(isbn), keyField(colISBN, isbn), false)
}

// BookForUpdate loads a book under a row-level write lock. It must run
// inside a transaction; the lock is held until commit or rollback.
func (s *Store) BookForUpdate(ctx context.Context, id int64) (lending.Book, error) {
	return s.bookWhere(ctx, goqu.C(colID).Eq(id), keyID(id), true)
}

func (s *Store) bookWhere(ctx context.Context, where exp.Expression, key string, forUpdate bool) (lending.Book, error) {
	query := builder().
		From(s.table(lending.TableBooks)).
		Select(bookColumns()...).
		Where(where)
	if forUpdate {
		query = query.ForUpdate(exp.Wait)
	}

	sqlQuery, _, toSQLErr := query.ToSQL()
	if toSQLErr != nil {
		return lending.Book{}, operationError(toSQLErr)
	}

	var book lending.Book

	found, err := s.fetchOne(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return scanBook(rows, &book)
	})
	if err != nil {
		return lending.Book{}, err
	}
	if !found {
		return lending.Book{}, &lending.NotFoundError{Kind: lending.KindBook, Key: key}
	}

	return book, nil
}

func (s *Store) Books(ctx context.Context) ([]lending.Book, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.table(lending.TableBooks)).
		Select(bookColumns()...).
		Order(goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, operationError(toSQLErr)
	}

	var books []lending.Book

	err := s.fetchAll(ctx, sqlQuery, func(rows adapters.DBRows) error {
		var book lending.Book
		if scanErr := scanBook(rows, &book); scanErr != nil {
			return scanErr
		}

		books = append(books, book)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// SaveBook validates and persists the book, creating it when its ID is zero
// and updating it otherwise. Foreign keys are checked against the author,
// publisher and category directories during validation.
func (s *Store) SaveBook(ctx context.Context, book *lending.Book) error {
	if err := lending.Validate(ctx, s, book); err != nil {
		return err
	}

	if book.ID == 0 {
		sqlQuery, _, toSQLErr := builder().
			Insert(s.table(lending.TableBooks)).
			Rows(bookRecord(*book)).
			Returning(colID).
			ToSQL()
		if toSQLErr != nil {
			return operationError(toSQLErr)
		}

		newID, insertErr := s.insertReturningID(ctx, sqlQuery)
		if insertErr != nil {
			return s.classifySaveError(insertErr, lending.KindBook, lending.DuplicateISBN, book.ISBN)
		}

		book.ID = newID
		s.logOperation(ctx, "created book", logAttrTable, lending.TableBooks)

		return nil
	}

	sqlQuery, _, toSQLErr := builder().
		Update(s.table(lending.TableBooks)).
		Set(bookRecord(*book)).
		Where(goqu.C(colID).Eq(book.ID)).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	affected, updateErr := s.execAffected(ctx, sqlQuery)
	if updateErr != nil {
		return s.classifySaveError(updateErr, lending.KindBook, lending.DuplicateISBN, book.ISBN)
	}
	if affected == 0 {
		return &lending.NotFoundError{Kind: lending.KindBook, Key: keyID(book.ID)}
	}

	s.logOperation(ctx, "updated book", logAttrTable, lending.TableBooks)

	return nil
}

// DeleteBook removes the book unless loans still reference it.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	return s.guardedDeleteByID(ctx, lending.TableBooks, lending.KindBook, id, loanDependents(colBookID))
}

// DeleteBookByISBN resolves the book by its ISBN and removes it unless loans
// still reference it.
func (s *Store) DeleteBookByISBN(ctx context.Context, isbn string) error {
	book, err := s.BookByISBN(ctx, isbn)
	if err != nil {
		return err
	}

	return s.DeleteBook(ctx, book.ID)
}
