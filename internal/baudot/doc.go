// Package baudot implements the ITA2 (Baudot-Murray) teleprinter code with
// the Russian МТК-2 extension: a static character table with three shift
// states (Letters, Figures, Cyrillic) and an encoder that turns text into a
// framed symbol stream ready for FSK synthesis.
package baudot
