package fontsubset

import (
	"fmt"

	xsfnt "golang.org/x/image/font/sfnt"
	"seehuhn.de/go/sfnt/glyph"
)

// verify parses a finished subset with an independent reader and checks the
// glyph count and the glyph of every mapped character.
func verify(data []byte, glyphs map[rune]glyph.ID, numGlyphs int) error {
	f, err := xsfnt.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerify, err)
	}
	if n := f.NumGlyphs(); n != numGlyphs {
		return fmt.Errorf("%w: %d glyphs, expected %d", ErrVerify, n, numGlyphs)
	}
	var buf xsfnt.Buffer
	for r, want := range glyphs {
		got, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return fmt.Errorf("%w: %U: %v", ErrVerify, r, err)
		}
		if got != xsfnt.GlyphIndex(want) {
			return fmt.Errorf("%w: %U maps to glyph %d, expected %d", ErrVerify, r, got, want)
		}
	}
	return nil
}
