package parser

import (
	"errors"
	"fmt"

	"github.com/rickgao/quotesync/internal/model"
)

// ParseError reports input the parser rejected.
type ParseError struct {
	Symbol string
	Phase  Phase  // Field being parsed
	Pos    int    // Position within the field (header index for PhaseHeader)
	Offset int64  // Byte offset within the response body
	Reason string
	Raw    []byte // Chunk being fed when parsing failed, for diagnostics
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s at %s position %d (offset %d)", e.Symbol, e.Reason, e.Phase, e.Pos, e.Offset)
}

// TransportError reports a non-success HTTP status for a transfer.
type TransportError struct {
	Symbol     string
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("quote request %s: http status %d", e.Symbol, e.StatusCode)
}

// TransferError reports a transfer that started but broke off (read error,
// timeout) before its response was fully parsed.
type TransferError struct {
	Symbol string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("quote transfer %s: %v", e.Symbol, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// StartupError reports a transfer that could not be started at all.
type StartupError struct {
	Symbol string
	Err    error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("start quote transfer %s: %v", e.Symbol, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Kind classifies an Outcome.
type Kind int

const (
	KindParsed Kind = iota
	KindParseFailed
	KindTransportFailed
	KindTransferFailed
	KindStartupFailed
)

func (k Kind) String() string {
	switch k {
	case KindParsed:
		return "parsed"
	case KindParseFailed:
		return "parse_error"
	case KindTransportFailed:
		return "transport_error"
	case KindTransferFailed:
		return "transfer_error"
	case KindStartupFailed:
		return "startup_error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Outcome is the terminal result for one security. Exactly one of Record
// and Err is set.
type Outcome struct {
	Security model.Security
	Record   *model.PriceRecord
	Err      error
}

// Kind returns the outcome's classification.
func (o Outcome) Kind() Kind {
	var (
		parseErr     *ParseError
		transportErr *TransportError
		startupErr   *StartupError
	)
	switch {
	case o.Err == nil:
		return KindParsed
	case errors.As(o.Err, &parseErr):
		return KindParseFailed
	case errors.As(o.Err, &transportErr):
		return KindTransportFailed
	case errors.As(o.Err, &startupErr):
		return KindStartupFailed
	}
	return KindTransferFailed
}
