// Package api provides the quote service client.
//
// The service answers one GET per ticker symbol with a small CSV document:
//
//	https://query1.finance.yahoo.com/v7/finance/download/{symbol}?interval=1d&events=history
//
// Each call to Open creates an independent Transfer; the body is read by the
// caller in chunks so parsing can proceed as bytes arrive.
package api
