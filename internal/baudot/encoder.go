package baudot

import (
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Symbol is one bit slot of the line signal.
type Symbol uint8

const (
	// Space is a zero bit, sent on the space tone.
	Space Symbol = iota
	// Mark is a one bit, sent on the mark tone.
	Mark
	// HalfMark is the half-duration stop bit that closes every unit.
	HalfMark
)

// SymbolsPerUnit is start + 5 data bits + stop + half-stop.
const SymbolsPerUnit = 8

// Level returns the numeric level of the symbol: 0, 1 or 0.5.
func (s Symbol) Level() float64 {
	switch s {
	case Mark:
		return 1
	case HalfMark:
		return 0.5
	default:
		return 0
	}
}

// String returns the level as text.
func (s Symbol) String() string {
	switch s {
	case Mark:
		return "1"
	case HalfMark:
		return "0.5"
	default:
		return "0"
	}
}

// UnitKind tells what a framed unit carries.
type UnitKind int

const (
	// Character is a printable character from the table.
	Character UnitKind = iota
	// Shift is a mode switch code.
	Shift
	// Control is a carriage return or line feed of the preamble or
	// postamble.
	Control
)

// String returns a short name for the kind.
func (k UnitKind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Control:
		return "control"
	default:
		return "char"
	}
}

// Unit is one framed code: a character, a shift or a control code.
type Unit struct {
	// Char is the transmitted character, '\r' / '\n' for controls and
	// zero for shifts.
	Char rune
	Code Code
	Kind UnitKind
	// Mode is the shift state in effect after the unit.
	Mode Mode
}

// Label returns the operator name of the unit: the character itself, the
// mode name for shifts, CR or LF for controls.
func (u Unit) Label() string {
	switch u.Kind {
	case Shift:
		return u.Mode.String()
	default:
		return charName(u.Char)
	}
}

// Symbols frames the unit.
func (u Unit) Symbols() []Symbol {
	return Frame(u.Code)
}

// Stats summarises an encoded message.
type Stats struct {
	Units      int
	Characters int
	Switches   int
	Skipped    int
}

// Symbols returns the total symbol count of the message.
func (s Stats) Symbols() int {
	return s.Units * SymbolsPerUnit
}

var upper = cases.Upper(language.Und)

// Normalize composes the text (NFC) and upper-cases it.
func Normalize(text string) string {
	return upper.String(norm.NFC.String(text))
}

// Frame wraps a code in its start bit, stop bit and half-stop bit.
func Frame(c Code) []Symbol {
	out := make([]Symbol, 0, SymbolsPerUnit)
	out = append(out, Space)
	for _, bit := range c {
		if bit == 1 {
			out = append(out, Mark)
		} else {
			out = append(out, Space)
		}
	}
	return append(out, Mark, HalfMark)
}

func shiftUnit(m Mode) Unit {
	return Unit{Code: ShiftCode(m), Kind: Shift, Mode: m}
}

func controlUnit(r rune, m Mode) Unit {
	c := CarriageReturn
	if r == '\n' {
		c = LineFeed
	}
	return Unit{Char: r, Code: c, Kind: Control, Mode: m}
}

// Units encodes text into framed units: the LTRS CR LF preamble, the
// message with shift codes inserted on every mode change, and the CR LF
// postamble. Unsupported characters are skipped. Whitespace-only text
// yields nil.
func Units(text string) []Unit {
	units, _ := encodeUnits(text)
	return units
}

// Analyze encodes text and reports its statistics.
func Analyze(text string) Stats {
	_, stats := encodeUnits(text)
	return stats
}

func encodeUnits(text string) ([]Unit, Stats) {
	var stats Stats

	text = Normalize(text)
	if strings.TrimSpace(text) == "" {
		return nil, stats
	}

	current := Letters
	units := make([]Unit, 0, len(text)+8)
	units = append(units, shiftUnit(Letters), controlUnit('\r', current), controlUnit('\n', current))

	for _, r := range text {
		code, mode, ok := CodeOf(r)
		if !ok {
			stats.Skipped++
			continue
		}
		if mode != current {
			units = append(units, shiftUnit(mode))
			current = mode
			stats.Switches++
		}
		units = append(units, Unit{Char: r, Code: code, Kind: Character, Mode: current})
		stats.Characters++
	}

	units = append(units, controlUnit('\r', current), controlUnit('\n', current))
	stats.Units = len(units)

	return units, stats
}

// Encode converts text into the symbol stream sent on the line.
func Encode(text string) []Symbol {
	units, stats := encodeUnits(text)
	if len(units) == 0 {
		return nil
	}

	symbols := make([]Symbol, 0, len(units)*SymbolsPerUnit)
	for _, u := range units {
		symbols = append(symbols, Frame(u.Code)...)
	}

	log.Debug("Encoded message",
		"units", stats.Units,
		"chars", stats.Characters,
		"switches", stats.Switches,
		"skipped", stats.Skipped,
		"symbols", len(symbols))

	return symbols
}

// Count returns the number of shift codes and characters text encodes to.
func Count(text string) (switches, chars int) {
	stats := Analyze(text)
	return stats.Switches, stats.Characters
}

// Format renders symbols with one rune per symbol, 0 and 1 for space and
// mark and ½ for the half stop bit. Units are separated by a space.
func Format(symbols []Symbol) string {
	var b strings.Builder
	b.Grow(len(symbols) + len(symbols)/SymbolsPerUnit)
	for i, s := range symbols {
		if i > 0 && i%SymbolsPerUnit == 0 {
			b.WriteByte(' ')
		}
		switch s {
		case Mark:
			b.WriteByte('1')
		case HalfMark:
			b.WriteRune('½')
		default:
			b.WriteByte('0')
		}
	}
	return b.String()
}
