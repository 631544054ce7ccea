package parser

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/rickgao/quotesync/internal/model"
)

// RecordParser parses one security's quote response across any number of
// chunks. It is owned by a single transfer and is not safe for concurrent use.
type RecordParser struct {
	sec    model.Security
	status int
	state  State
	offset int64 // Bytes consumed so far
	raw    []byte

	date                   model.Date
	open, high, low, close string
	volume                 int64
}

// NewRecordParser creates a parser for sec whose transfer observed status.
// A status other than 200 makes the parser reject all input.
func NewRecordParser(sec model.Security, status int) *RecordParser {
	return &RecordParser{
		sec:    sec,
		status: status,
		state:  Initial(),
	}
}

// Security returns the security this parser belongs to.
func (p *RecordParser) Security() model.Security {
	return p.sec
}

// State returns the current parse state.
func (p *RecordParser) State() State {
	return p.state
}

// Terminal reports whether the parser accepts no more input.
func (p *RecordParser) Terminal() bool {
	return p.state.Phase.Terminal()
}

// BytesFed returns the number of body bytes consumed by the state machine.
func (p *RecordParser) BytesFed() int64 {
	return p.offset
}

// Feed consumes the next chunk of the response body. It is a no-op once the
// parser is terminal.
func (p *RecordParser) Feed(chunk []byte) {
	if p.gate() {
		return
	}

	for i, b := range chunk {
		next, f, ok := Transition(p.state, b)
		p.state = next
		if ok {
			p.accept(f)
		}
		if p.state.Phase.Terminal() {
			p.offset += int64(i)
			if p.state.Phase == PhaseFailed {
				p.raw = bytes.Clone(chunk)
			} else {
				p.offset++
			}
			return
		}
	}
	p.offset += int64(len(chunk))
}

// Finish marks the end of the response body.
func (p *RecordParser) Finish() {
	if p.gate() {
		return
	}

	next, f, ok := Finish(p.state)
	p.state = next
	if ok {
		p.accept(f)
	}
}

// gate applies the transport status check and reports whether input must be
// ignored.
func (p *RecordParser) gate() bool {
	if p.state.Phase.Terminal() {
		return true
	}
	if p.status != http.StatusOK {
		p.state = HTTPErrorState(p.status)
		return true
	}
	return false
}

// accept stores a completed field.
func (p *RecordParser) accept(f Field) {
	switch f.Phase {
	case PhaseYear:
		p.date.Year = int(f.Num)
	case PhaseMonth:
		p.date.Month = time.Month(f.Num)
	case PhaseDay:
		p.date.Day = int(f.Num)
		if !p.date.Valid() {
			p.state = State{
				Phase: PhaseFailed,
				Failure: Failure{
					Phase:  PhaseDay,
					Reason: fmt.Sprintf("invalid date %s", p.date),
				},
			}
		}
	case PhaseOpen:
		p.open = f.Text()
	case PhaseHigh:
		p.high = f.Text()
	case PhaseLow:
		p.low = f.Text()
	case PhaseClose:
		p.close = f.Text()
	case PhaseVolume:
		p.volume = f.Num
	}
}

// Result returns the outcome for the parsed response. Only a parser in
// PhaseDone yields a record.
func (p *RecordParser) Result() Outcome {
	switch p.state.Phase {
	case PhaseDone:
		return Outcome{
			Security: p.sec,
			Record: &model.PriceRecord{
				Security: p.sec,
				Date:     p.date,
				Open:     p.open,
				High:     p.high,
				Low:      p.low,
				Close:    p.close,
				Volume:   p.volume,
			},
		}
	case PhaseHTTPError:
		return Outcome{
			Security: p.sec,
			Err:      &TransportError{Symbol: p.sec.Symbol, StatusCode: p.state.Status},
		}
	case PhaseFailed:
		return Outcome{
			Security: p.sec,
			Err: &ParseError{
				Symbol: p.sec.Symbol,
				Phase:  p.state.Failure.Phase,
				Pos:    p.state.Failure.Pos,
				Offset: p.offset,
				Reason: p.state.Failure.Reason,
				Raw:    p.raw,
			},
		}
	}

	return Outcome{
		Security: p.sec,
		Err: &ParseError{
			Symbol: p.sec.Symbol,
			Phase:  p.state.Phase,
			Pos:    p.state.Pos,
			Offset: p.offset,
			Reason: "incomplete response",
		},
	}
}
