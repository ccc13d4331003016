/*
Package fontsubset reduces TrueType and OpenType fonts to the glyphs needed
for a given set of characters.

Characters are mapped to glyphs through the font's character-to-glyph table
(the 'cmap'). A character without a glyph in the font is not an error, it is
simply left out. The reduced font keeps glyph 0 (.notdef) at position 0,
followed by the mapped glyphs in ascending order of their original IDs and
any component glyphs composite outlines refer to. Layout tables (GDEF, GSUB,
GPOS) are dropped and a fresh Unicode cmap is written.

WOFF and WOFF2 input is unpacked first; output is always a plain SFNT.

	s := fontsubset.New(fontsubset.WithRetain(' '))
	small, err := s.SubsetFont(fontData, []rune("Hello"))

By default every result is parsed again and checked glyph by glyph before it
is returned.
*/
package fontsubset

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'epubfont.fontsubset'.
func tracer() tracing.Trace {
	return tracing.Select("epubfont.fontsubset")
}
