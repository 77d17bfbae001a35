package baudot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func framed(codes ...Code) []Symbol {
	var out []Symbol
	for _, c := range codes {
		out = append(out, Frame(c)...)
	}
	return out
}

func TestFrame(t *testing.T) {
	got := Frame(Code{1, 0, 0, 0, 0})
	want := []Symbol{Space, Mark, Space, Space, Space, Space, Mark, HalfMark}
	assert.Equal(t, want, got)
}

func TestEncodeSingleLetter(t *testing.T) {
	got := Encode("E")
	want := framed(LettersShift, CarriageReturn, LineFeed, Code{1, 0, 0, 0, 0}, CarriageReturn, LineFeed)

	require.Len(t, got, 48)
	assert.Equal(t, want, got)
}

func TestEncodeLowerCase(t *testing.T) {
	assert.Equal(t, Encode("HELLO"), Encode("hello"))
}

func TestEncodeEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n", "\r\n"} {
		assert.Empty(t, Encode(in), "input %q", in)
		assert.Empty(t, Units(in), "input %q", in)
	}
}

func TestEncodeUnits(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		labels []string
	}{
		{
			name:   "letters only never switch",
			input:  "CQ",
			labels: []string{"LTRS", "CR", "LF", "C", "Q", "CR", "LF"},
		},
		{
			name:   "figures switch once",
			input:  "73",
			labels: []string{"LTRS", "CR", "LF", "FIGS", "7", "3", "CR", "LF"},
		},
		{
			name:   "space is a figure",
			input:  "DE R1",
			labels: []string{"LTRS", "CR", "LF", "D", "E", "FIGS", " ", "LTRS", "R", "FIGS", "1", "CR", "LF"},
		},
		{
			name:   "cyrillic",
			input:  "Мир",
			labels: []string{"LTRS", "CR", "LF", "RUS", "М", "И", "Р", "CR", "LF"},
		},
		{
			name:   "cyrillic figures letters",
			input:  "ЧАЙ",
			labels: []string{"LTRS", "CR", "LF", "FIGS", "Ч", "RUS", "А", "Й", "CR", "LF"},
		},
		{
			name:   "unsupported characters dropped",
			input:  "A!B",
			labels: []string{"LTRS", "CR", "LF", "A", "B", "CR", "LF"},
		},
		{
			name:   "all unsupported keeps framing",
			input:  "!!!",
			labels: []string{"LTRS", "CR", "LF", "CR", "LF"},
		},
		{
			name:   "no trailing mode reset",
			input:  "5",
			labels: []string{"LTRS", "CR", "LF", "FIGS", "5", "CR", "LF"},
		},
		{
			name:   "embedded line feed is a figure",
			input:  "A\nB",
			labels: []string{"LTRS", "CR", "LF", "A", "FIGS", "LF", "LTRS", "B", "CR", "LF"},
		},
		{
			name:   "embedded CR LF stays in figures",
			input:  "A\r\nB",
			labels: []string{"LTRS", "CR", "LF", "A", "FIGS", "CR", "LF", "LTRS", "B", "CR", "LF"},
		},
		{
			name:   "line feed after digits needs no switch",
			input:  "73\n",
			labels: []string{"LTRS", "CR", "LF", "FIGS", "7", "3", "LF", "CR", "LF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := Units(tt.input)
			labels := make([]string, len(units))
			for i, u := range units {
				labels[i] = u.Label()
			}
			assert.Equal(t, tt.labels, labels)
			assert.Len(t, Encode(tt.input), len(tt.labels)*SymbolsPerUnit)
		})
	}
}

func TestNormalizeComposes(t *testing.T) {
	// И followed by a combining breve composes into Й.
	decomposed := "\u0438\u0306"
	assert.Equal(t, "Й", Normalize(decomposed))

	units := Units(decomposed)
	require.Len(t, units, 7)
	assert.Equal(t, 'Й', units[4].Char)
}

func TestUnsupportedDoNotAlterOutput(t *testing.T) {
	assert.Equal(t, Encode("CQ CQ DE R1ABC"), Encode("C#Q CQ* DE~ R1A@BC"))
}

func TestAnalyze(t *testing.T) {
	stats := Analyze("HI 73!")
	assert.Equal(t, 5, stats.Characters)
	assert.Equal(t, 1, stats.Switches)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 3+1+5+2, stats.Units)
	assert.Equal(t, len(Encode("HI 73!")), stats.Symbols())
}

var alphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcxyz0123456789-+?:().,/ " +
	"АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЪЫЬЯЧШЩЭЮабвё" + "!@#*=\"\t\r\n")

func TestEncodeLengthProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringOf(rapid.RuneFrom(alphabet)).Draw(t, "text")

		symbols := Encode(text)
		if strings.TrimSpace(text) == "" {
			if len(symbols) != 0 {
				t.Fatalf("expected no symbols for %q, got %d", text, len(symbols))
			}
			return
		}

		stats := Analyze(text)
		if len(symbols)%SymbolsPerUnit != 0 {
			t.Fatalf("length %d is not a multiple of %d", len(symbols), SymbolsPerUnit)
		}
		want := SymbolsPerUnit * (3 + stats.Switches + stats.Characters + 2)
		if len(symbols) != want {
			t.Fatalf("got %d symbols, want %d", len(symbols), want)
		}
	})
}

func TestFramingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringOf(rapid.RuneFrom(alphabet)).Draw(t, "text")
		symbols := Encode(text)

		for i := 0; i < len(symbols); i += SymbolsPerUnit {
			unit := symbols[i : i+SymbolsPerUnit]
			if unit[0] != Space || unit[6] != Mark || unit[7] != HalfMark {
				t.Fatalf("unit %d badly framed: %v", i/SymbolsPerUnit, unit)
			}
			for _, s := range unit[1:6] {
				if s == HalfMark {
					t.Fatalf("half mark inside data bits of unit %d", i/SymbolsPerUnit)
				}
			}
		}
	})
}

func TestSingleModeSwitchesOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		set := rapid.SampledFrom([]string{"0123456789", cyrillicLetters, latinLetters}).Draw(t, "set")
		text := rapid.StringOfN(rapid.RuneFrom([]rune(set)), 1, 200, -1).Draw(t, "text")

		stats := Analyze(text)
		want := 1
		if set == latinLetters {
			want = 0
		}
		if stats.Switches != want {
			t.Fatalf("got %d switches for %q, want %d", stats.Switches, text, want)
		}
	})
}

func TestNoRedundantSwitches(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringOf(rapid.RuneFrom(alphabet)).Draw(t, "text")
		units := Units(text)

		mode := Letters
		for i, u := range units {
			if i == 0 || u.Kind != Shift {
				continue
			}
			if u.Mode == mode {
				t.Fatalf("unit %d re-selects %s", i, mode)
			}
			mode = u.Mode
			if i+1 >= len(units) || units[i+1].Kind != Character {
				t.Fatalf("shift at %d is not followed by a character", i)
			}
		}
	})
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "0100001½", Format(Frame(Code{1, 0, 0, 0, 0})))

	got := Format(Encode("E"))
	units := strings.Split(got, " ")
	require.Len(t, units, 6)
	assert.Equal(t, "0111111½", units[0])
	assert.Equal(t, "0100001½", units[3])
}

func TestSymbolLevel(t *testing.T) {
	assert.Equal(t, 0.0, Space.Level())
	assert.Equal(t, 1.0, Mark.Level())
	assert.Equal(t, 0.5, HalfMark.Level())
	assert.Equal(t, "0.5", HalfMark.String())
}

func TestCount(t *testing.T) {
	switches, chars := Count("DE R1")
	assert.Equal(t, 3, switches)
	assert.Equal(t, 5, chars)
	assert.Len(t, Encode("DE R1"), SymbolsPerUnit*(3+switches+chars+2))
}

func TestEmbeddedLineFeedFrames(t *testing.T) {
	got := Encode("A\nB")
	want := framed(LettersShift, CarriageReturn, LineFeed,
		Code{1, 1, 0, 0, 0}, FiguresShift, LineFeed, LettersShift, Code{1, 0, 0, 1, 1},
		CarriageReturn, LineFeed)

	require.Len(t, got, 10*SymbolsPerUnit)
	assert.Equal(t, want, got)

	stats := Analyze("A\nB")
	assert.Equal(t, 2, stats.Switches)
	assert.Equal(t, 3, stats.Characters)
	assert.Equal(t, len(got), SymbolsPerUnit*(3+stats.Switches+stats.Characters+2))
}
