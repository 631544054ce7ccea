// Package parser implements the incremental quote CSV parser.
//
// A response is parsed one byte at a time by Transition, a pure function of
// (State, byte). RecordParser owns one security's State across any number of
// chunk deliveries, so a field may be split at any byte boundary.
//
// Accepted input:
//
//	Date,Open,High,Low,Close,Adj Close,Volume\n
//	YYYY-MM-DD,open,high,low,close,adjclose,volume\n
//
// Only the first data row is read; the parser stays in a terminal state for
// anything after it.
package parser
