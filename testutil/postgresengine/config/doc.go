// Package config provides PostgreSQL database configuration for testing the
// lending storage engine.
//
// This package contains factory functions for creating database connections
// using the engine's supported PostgreSQL adapters (pgx.Pool, sql.DB, sqlx.DB)
// against the test database. The DSN is taken from the LENDING_POSTGRES_DSN
// environment variable, loaded from a .env file when present, with a local
// default as fallback.
package config
