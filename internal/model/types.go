package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Store Constants
// -----------------------------------------------------------------------------

const (
	// MaxSecurityIDLen is the longest zuniqueid accepted (UUID string form).
	MaxSecurityIDLen = 36

	// MaxSymbolLen is the longest ticker symbol requested from the quote service.
	MaxSymbolLen = 5

	// PriceEntity is the z_ent tag of price rows.
	PriceEntity = 42

	// PriceOptimisticLock is the z_opt tag written with every price row.
	PriceOptimisticLock = 1

	// PricePrimaryKeyName is the z_primarykey row tracking the max price z_pk.
	PricePrimaryKeyName = "Price"
)

// -----------------------------------------------------------------------------
// Securities
// -----------------------------------------------------------------------------

// Security identifies one instrument to fetch a quote for.
type Security struct {
	ID     string // zuniqueid, primary key of the instrument
	Symbol string // zsymbol, used to build the request URL
}

// Within reports whether the security fits the given length bounds.
// An empty ID or symbol never fits.
func (s Security) Within(maxIDLen, maxSymbolLen int) bool {
	if s.ID == "" || s.Symbol == "" {
		return false
	}
	return len(s.ID) <= maxIDLen && len(s.Symbol) <= maxSymbolLen
}

func (s Security) String() string {
	return s.Symbol + " (" + s.ID + ")"
}

// -----------------------------------------------------------------------------
// Prices
// -----------------------------------------------------------------------------

// PriceRecord is one parsed daily quote, ready to be persisted.
type PriceRecord struct {
	Security Security
	Date     Date
	Open     string // Decimal text, e.g. "10.5"
	High     string
	Low      string
	Close    string
	Volume   int64
}

// PriceDecimals holds the four prices of a record as decimals.
type PriceDecimals struct {
	Open, High, Low, Close decimal.Decimal
}

// Decimals converts the price text to decimal values for binding.
func (r PriceRecord) Decimals() (PriceDecimals, error) {
	var d PriceDecimals
	var err error
	if d.Open, err = decimal.NewFromString(r.Open); err != nil {
		return d, fmt.Errorf("open price %q: %w", r.Open, err)
	}
	if d.High, err = decimal.NewFromString(r.High); err != nil {
		return d, fmt.Errorf("high price %q: %w", r.High, err)
	}
	if d.Low, err = decimal.NewFromString(r.Low); err != nil {
		return d, fmt.Errorf("low price %q: %w", r.Low, err)
	}
	if d.Close, err = decimal.NewFromString(r.Close); err != nil {
		return d, fmt.Errorf("close price %q: %w", r.Close, err)
	}
	return d, nil
}
