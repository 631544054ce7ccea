// Package database provides access to the finance store.
//
// Two backends implement Store:
//   - SQLite: the Banktivity document file (accountsData.ibank), one connection
//   - PostgreSQL: a pgx pool over a migrated copy of the same tables
//
// Both accept the same $N placeholder SQL, so callers write statements once.
package database
