// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// of ORM concerns.
//
// Repositories load and store models and convert them with ToDomain/FromDomain.
// The tables themselves are owned by the SQL migrations; AutoMigrate is only
// used by tests and the optional development bootstrap.
package models
