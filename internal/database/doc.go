// Package database provides PostgreSQL connectivity and repositories.
//
// Uses pgx for connection pooling and inline SQL migrations at startup.
// Repositories implement the domain interfaces: UserRepository,
// OrganizationRepository, LocationRepository, ReviewRepository. The stored
// refresh token column carries the encrypted blob verbatim; the application
// layer owns encryption.
package database
