// Package lending provides the core abstractions and types for a library's
// lending domain: catalog entities, memberships, loans and fines.
//
// This package defines the entity types, the error taxonomy shared by all
// storage engines and services, the aggregating validation engine, and the
// storage ports (Storage / UnitOfWork) that the lifecycle services operate
// against.
//
// Validation collects every violated field into a single ValidationError
// instead of failing on the first one:
//
//	author := lending.Author{Name: "Jo"}
//	if err := lending.Validate(ctx, nil, author); err != nil {
//		var verr *lending.ValidationError
//		if errors.As(err, &verr) {
//			for _, f := range verr.Fields() {
//				// f.Field, f.Reason
//			}
//		}
//	}
//
// Expected outcomes (a missing row, a duplicate key, a blocked delete) are
// modeled as typed error values matching the category sentinels ErrNotFound,
// ErrDuplicate, ErrInUse and ErrValidationFailed via errors.Is. Hard storage
// failures are joined onto ErrDatabaseOperation and never swallowed.
package lending
