// Package writer reconciles parsed price records into the finance store.
//
// Each record is upserted on the key (entity, lock, date, security): an
// UPDATE of the existing row, or an INSERT when none matched. Every record
// runs in its own savepoint, so a failed record is skipped without touching
// the others. After all records the price primary key counter is refreshed.
//
// Prices are bound as exact decimals, never floats.
package writer
