package parser

import "fmt"

// Header is the literal first line of every quote response.
const Header = "Date,Open,High,Low,Close,Adj Close,Volume"

// MaxNumLen is the longest admissible price text.
const MaxNumLen = 20

const (
	maxYearDigits  = 4
	maxMonthDigits = 2
	maxDayDigits   = 2
)

// Phase identifies the field being accumulated, or a terminal outcome.
type Phase uint8

const (
	PhaseHeader Phase = iota
	PhaseYear
	PhaseMonth
	PhaseDay
	PhaseOpen
	PhaseHigh
	PhaseLow
	PhaseClose
	PhaseAdjClose
	PhaseVolume
	PhaseDone      // terminal: row parsed
	PhaseFailed    // terminal: malformed input
	PhaseHTTPError // terminal: non-success transport status
)

var phaseNames = [...]string{
	PhaseHeader:    "header",
	PhaseYear:      "year",
	PhaseMonth:     "month",
	PhaseDay:       "day",
	PhaseOpen:      "open",
	PhaseHigh:      "high",
	PhaseLow:       "low",
	PhaseClose:     "close",
	PhaseAdjClose:  "adj close",
	PhaseVolume:    "volume",
	PhaseDone:      "done",
	PhaseFailed:    "failed",
	PhaseHTTPError: "http error",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Terminal reports whether no further input is accepted in this phase.
func (p Phase) Terminal() bool {
	return p >= PhaseDone
}

// Failure describes why parsing stopped in PhaseFailed.
type Failure struct {
	Phase  Phase  // Field being parsed when the input was rejected
	Pos    int    // Position within that field (header index for PhaseHeader)
	Reason string // Human-readable diagnostic
}

// State is the parser's tagged state. Pos is the header cursor in
// PhaseHeader and the number of bytes accumulated for the current field
// otherwise.
type State struct {
	Phase   Phase
	Pos     int
	Failure Failure // PhaseFailed only
	Status  int     // PhaseHTTPError only

	num  int64
	text [MaxNumLen]byte
	dot  bool
}

// Initial returns the state expecting the first header byte.
func Initial() State {
	return State{Phase: PhaseHeader}
}

// HTTPErrorState returns the terminal state for a non-success status.
func HTTPErrorState(status int) State {
	return State{Phase: PhaseHTTPError, Status: status}
}

// Field is a completed CSV field emitted by Transition.
type Field struct {
	Phase Phase // Which field closed
	Num   int64 // Year, month, day and volume

	text [MaxNumLen]byte
	n    int
}

// Text returns the raw text of a price field.
func (f Field) Text() string {
	return string(f.text[:f.n])
}

// Transition consumes one byte. It returns the next state and, when the byte
// closed a field, that field with ok set.
func Transition(s State, b byte) (next State, f Field, ok bool) {
	switch s.Phase {
	case PhaseHeader:
		switch {
		case s.Pos < len(Header) && b == Header[s.Pos]:
			s.Pos++
			return s, Field{}, false
		case s.Pos == len(Header) && b == '\n':
			return State{Phase: PhaseYear}, Field{}, false
		}
		want := byte('\n')
		if s.Pos < len(Header) {
			want = Header[s.Pos]
		}
		return fail(s, fmt.Sprintf("bad header byte %q, want %q", b, want)), Field{}, false

	case PhaseYear:
		return integer(s, b, '-', maxYearDigits, PhaseMonth)
	case PhaseMonth:
		return integer(s, b, '-', maxMonthDigits, PhaseDay)
	case PhaseDay:
		return integer(s, b, ',', maxDayDigits, PhaseOpen)

	case PhaseOpen:
		return price(s, b, PhaseHigh)
	case PhaseHigh:
		return price(s, b, PhaseLow)
	case PhaseLow:
		return price(s, b, PhaseClose)
	case PhaseClose:
		return price(s, b, PhaseAdjClose)

	case PhaseAdjClose:
		if b == ',' {
			return State{Phase: PhaseVolume}, Field{}, false
		}
		s.Pos++
		return s, Field{}, false

	case PhaseVolume:
		return integer(s, b, '\n', 0, PhaseDone)
	}

	// Terminal phases absorb everything.
	return s, Field{}, false
}

// Finish signals the end of input. A volume field with at least one digit
// completes the row; any other non-terminal phase fails.
func Finish(s State) (next State, f Field, ok bool) {
	if s.Phase.Terminal() {
		return s, Field{}, false
	}
	if s.Phase == PhaseVolume && s.Pos > 0 {
		return State{Phase: PhaseDone}, Field{Phase: PhaseVolume, Num: s.num}, true
	}
	return fail(s, "unexpected end of response"), Field{}, false
}

// integer accumulates decimal digits until sep closes the field. maxDigits
// of zero leaves the field unbounded.
func integer(s State, b, sep byte, maxDigits int, then Phase) (State, Field, bool) {
	switch {
	case b >= '0' && b <= '9':
		if maxDigits > 0 && s.Pos >= maxDigits {
			return fail(s, fmt.Sprintf("more than %d digits", maxDigits)), Field{}, false
		}
		s.num = s.num*10 + int64(b-'0')
		s.Pos++
		return s, Field{}, false
	case b == sep:
		if s.Pos == 0 {
			return fail(s, "empty field"), Field{}, false
		}
		if reason := outOfRange(s.Phase, s.num); reason != "" {
			return fail(s, reason), Field{}, false
		}
		return State{Phase: then}, Field{Phase: s.Phase, Num: s.num}, true
	}
	return fail(s, fmt.Sprintf("unexpected byte %q", b)), Field{}, false
}

func outOfRange(p Phase, n int64) string {
	switch {
	case p == PhaseMonth && (n < 1 || n > 12):
		return fmt.Sprintf("month %d out of range", n)
	case p == PhaseDay && (n < 1 || n > 31):
		return fmt.Sprintf("day %d out of range", n)
	}
	return ""
}

// price accumulates digits and at most one decimal point into the bounded
// text buffer. Input longer than MaxNumLen is rejected, never truncated.
func price(s State, b byte, then Phase) (State, Field, bool) {
	switch {
	case b == ',':
		if s.Pos == 0 {
			return fail(s, "empty field"), Field{}, false
		}
		return State{Phase: then}, Field{Phase: s.Phase, text: s.text, n: s.Pos}, true
	case b == '.' && s.dot:
		return fail(s, "second decimal point"), Field{}, false
	case b == '.' || (b >= '0' && b <= '9'):
		if s.Pos >= MaxNumLen {
			return fail(s, fmt.Sprintf("longer than %d bytes", MaxNumLen)), Field{}, false
		}
		s.text[s.Pos] = b
		s.Pos++
		s.dot = s.dot || b == '.'
		return s, Field{}, false
	}
	return fail(s, fmt.Sprintf("unexpected byte %q", b)), Field{}, false
}

func fail(s State, reason string) State {
	return State{
		Phase:   PhaseFailed,
		Failure: Failure{Phase: s.Phase, Pos: s.Pos, Reason: reason},
	}
}
