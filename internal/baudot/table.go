package baudot

import (
	"fmt"
	"sort"
	"unicode"
)

// Mode is a shift state of the teleprinter.
type Mode int

const (
	// Letters selects the Latin letter set. Every message starts here.
	Letters Mode = iota
	// Figures selects digits, punctuation and the Ч Ш Щ Э Ю letters.
	Figures
	// Cyrillic selects the Russian letter set.
	Cyrillic
)

// String returns the conventional operator name of the mode.
func (m Mode) String() string {
	switch m {
	case Letters:
		return "LTRS"
	case Figures:
		return "FIGS"
	case Cyrillic:
		return "RUS"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Code is a five bit ITA2 pattern in transmission order.
type Code [5]uint8

// String renders the code as a bit string, e.g. "10000".
func (c Code) String() string {
	b := make([]byte, len(c))
	for i, bit := range c {
		b[i] = '0' + bit
	}
	return string(b)
}

// Entry is one row of the code table.
type Entry struct {
	Char rune
	Code Code
	Mode Mode
}

// Reserved rows. The shift codes are addressed directly by the encoder.
// CR and LF are also table rows in the Figures set; the encoder uses these
// values for the preamble and postamble without switching modes.
var (
	LettersShift   = Code{1, 1, 1, 1, 1}
	FiguresShift   = Code{1, 1, 0, 1, 1}
	CyrillicShift  = Code{0, 0, 0, 0, 0}
	CarriageReturn = Code{0, 0, 0, 1, 0}
	LineFeed       = Code{0, 1, 0, 0, 0}
)

const (
	latinLetters    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	cyrillicLetters = "АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЪЫЬЯ"
)

var codes = map[rune]Code{
	// Latin letters, ITA2
	'A': {1, 1, 0, 0, 0}, 'B': {1, 0, 0, 1, 1}, 'C': {0, 1, 1, 1, 0},
	'D': {1, 0, 0, 1, 0}, 'E': {1, 0, 0, 0, 0}, 'F': {1, 0, 1, 1, 0},
	'G': {0, 1, 0, 1, 1}, 'H': {0, 0, 1, 0, 1}, 'I': {0, 1, 1, 0, 0},
	'J': {1, 1, 0, 1, 0}, 'K': {1, 1, 1, 1, 0}, 'L': {0, 1, 0, 0, 1},
	'M': {0, 0, 1, 1, 1}, 'N': {0, 0, 1, 1, 0}, 'O': {0, 0, 0, 1, 1},
	'P': {0, 1, 1, 0, 1}, 'Q': {1, 1, 1, 0, 1}, 'R': {0, 1, 0, 1, 0},
	'S': {1, 0, 1, 0, 0}, 'T': {0, 0, 0, 0, 1}, 'U': {1, 1, 1, 0, 0},
	'V': {0, 1, 1, 1, 1}, 'W': {1, 1, 0, 0, 1}, 'X': {1, 0, 1, 1, 1},
	'Y': {1, 0, 1, 0, 1}, 'Z': {1, 0, 0, 0, 1},

	// Figures, МТК-2
	'0': {0, 1, 1, 0, 1}, '1': {1, 1, 1, 0, 1}, '2': {1, 1, 0, 0, 1},
	'3': {1, 0, 0, 0, 0}, '4': {0, 1, 0, 1, 0}, '5': {0, 0, 0, 0, 1},
	'6': {1, 0, 1, 0, 1}, '7': {1, 1, 1, 0, 0}, '8': {0, 1, 1, 0, 0},
	'9': {0, 0, 0, 1, 1}, '-': {1, 1, 0, 0, 0}, '+': {1, 0, 0, 0, 1},
	'?': {1, 0, 0, 1, 1}, ':': {0, 1, 1, 1, 0}, '(': {1, 1, 1, 1, 0},
	')': {0, 1, 0, 0, 1}, '.': {0, 0, 1, 1, 1}, ',': {0, 0, 1, 1, 0},
	'/': {0, 1, 1, 1, 1}, ' ': {0, 0, 1, 0, 0},
	'Ш': {0, 1, 0, 1, 1}, 'Щ': {0, 0, 1, 0, 1}, 'Э': {1, 0, 1, 1, 0},
	'Ю': {1, 1, 0, 1, 0}, 'Ч': {0, 1, 0, 1, 0},
	'\r': {0, 0, 0, 1, 0}, '\n': {0, 1, 0, 0, 0},

	// Cyrillic letters, МТК-2
	'А': {1, 1, 0, 0, 0}, 'Б': {1, 0, 0, 1, 1}, 'В': {1, 1, 0, 0, 1},
	'Г': {0, 1, 0, 1, 1}, 'Д': {1, 0, 0, 1, 0}, 'Е': {1, 0, 0, 0, 0},
	'Ж': {0, 1, 1, 1, 1}, 'З': {1, 0, 0, 0, 1}, 'И': {0, 1, 1, 0, 0},
	'Й': {1, 1, 0, 1, 0}, 'К': {1, 1, 1, 1, 0}, 'Л': {0, 1, 0, 0, 1},
	'М': {0, 0, 1, 1, 1}, 'Н': {0, 0, 1, 1, 0}, 'О': {0, 0, 0, 1, 1},
	'П': {0, 1, 1, 0, 1}, 'Р': {0, 1, 0, 1, 0}, 'С': {1, 0, 1, 0, 0},
	'Т': {0, 0, 0, 0, 1}, 'У': {1, 1, 1, 0, 0}, 'Ф': {1, 0, 1, 1, 0},
	'Х': {0, 0, 1, 0, 1}, 'Ц': {0, 1, 1, 1, 0}, 'Ъ': {1, 0, 1, 1, 1},
	'Ы': {1, 0, 1, 0, 1}, 'Ь': {1, 0, 1, 1, 1},
	'Я': {1, 1, 1, 0, 1}, 'Ё': {1, 0, 0, 0, 0},
}

// Name returns the printable name of the entry: CR and LF for the line
// controls, the character itself otherwise.
func (e Entry) Name() string {
	return charName(e.Char)
}

func charName(r rune) string {
	switch r {
	case '\r':
		return "CR"
	case '\n':
		return "LF"
	default:
		return string(r)
	}
}

// table is the immutable lookup built at init.
var table = buildTable()

func buildTable() map[rune]Entry {
	t := make(map[rune]Entry, len(codes))
	for r, c := range codes {
		t[r] = Entry{Char: r, Code: c, Mode: classify(r)}
	}
	return t
}

func classify(r rune) Mode {
	switch {
	case containsRune(latinLetters, r):
		return Letters
	case containsRune(cyrillicLetters, r):
		return Cyrillic
	default:
		return Figures
	}
}

func containsRune(set string, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}

// CodeOf returns the code and owning mode of r. Lookup is case-insensitive.
// The boolean is false when r has no entry; callers skip such characters.
func CodeOf(r rune) (Code, Mode, bool) {
	e, ok := table[unicode.ToUpper(r)]
	if !ok {
		return Code{}, Letters, false
	}
	return e.Code, e.Mode, true
}

// ModeOf classifies r. A–Z are Letters, the Cyrillic set is Cyrillic and
// everything else present in the table is Figures. Characters that are not
// in the table report Figures as well; use Supported to tell them apart.
func ModeOf(r rune) Mode {
	if e, ok := table[unicode.ToUpper(r)]; ok {
		return e.Mode
	}
	return Figures
}

// Supported reports whether r can be transmitted.
func Supported(r rune) bool {
	_, ok := table[unicode.ToUpper(r)]
	return ok
}

// ShiftCode returns the switch code that selects m.
func ShiftCode(m Mode) Code {
	switch m {
	case Figures:
		return FiguresShift
	case Cyrillic:
		return CyrillicShift
	default:
		return LettersShift
	}
}

// Table returns a copy of the code table ordered by mode, then character.
func Table() []Entry {
	entries := make([]Entry, 0, len(table))
	for _, e := range table {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Mode != entries[j].Mode {
			return entries[i].Mode < entries[j].Mode
		}
		return entries[i].Char < entries[j].Char
	})
	return entries
}
