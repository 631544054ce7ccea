// Package pricesync runs one security price synchronization.
//
// A run enumerates the securities in the store, downloads the latest daily
// quote for each one, and reconciles the parsed quotes into the store inside
// a single transaction. Per-security failures are logged and counted; only
// opening the store, enumerating securities and persisting the batch can
// fail a run.
package pricesync
