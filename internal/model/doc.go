// Package model defines shared data types used across quotesync.
//
// Types mirror the Banktivity store schema:
//   - zsecurity: Security (zuniqueid, zsymbol)
//   - zprice: PriceRecord keyed by (z_ent, z_opt, zdate, zsecurityid)
//
// Conventions:
//   - Prices: decimal text exactly as quoted (never float64)
//   - Dates: calendar dates with no zone; stored as seconds since 2001-01-01 UTC plus 12h
//   - IDs: 36-byte UUID strings for securities
package model
