// Package helper provides observability test doubles for the lending
// storage engine.
package helper
