package fontsubset

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/font/opentype/tables"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"seehuhn.de/go/sfnt/glyph"
)

var cmapTag = opentype.MustNewTag("cmap")

// Mapping is the result of looking up characters in a font's cmap.
type Mapping struct {
	// Glyphs holds the glyph of every character the font covers.
	Glyphs map[rune]glyph.ID

	// Missing lists the characters without a glyph, in input order.
	Missing []rune
}

// MapRunes looks up runes in the cmap of an SFNT font (TrueType or
// OpenType). Runes the font does not map, or maps to glyph 0, end up in
// Missing.
func MapRunes(sfnt []byte, runes []rune) (*Mapping, error) {
	ld, err := opentype.NewLoader(bytes.NewReader(sfnt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFont, err)
	}
	if !ld.HasTable(cmapTag) {
		return nil, ErrNoCmap
	}
	raw, err := ld.RawTable(cmapTag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCmap, err)
	}
	table, _, err := tables.ParseCmap(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCmap, err)
	}
	// ProcessCmap picks the best Unicode subtable. Symbol fonts get their
	// U+F0xx codes remapped to the low range.
	cmap, _, err := font.ProcessCmap(table, tables.FPNone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCmap, err)
	}

	m := &Mapping{Glyphs: make(map[rune]glyph.ID, len(runes))}
	for _, r := range runes {
		gid, ok := cmap.Lookup(r)
		if !ok || gid == 0 || gid > 0xFFFF {
			m.Missing = append(m.Missing, r)
			continue
		}
		m.Glyphs[r] = glyph.ID(gid)
	}
	tracer().Debugf("mapped %d of %d characters", len(m.Glyphs), len(runes))
	return m, nil
}

// GlyphIDs returns the distinct glyphs of the mapping in ascending order,
// preceded by glyph 0 (.notdef).
func (m *Mapping) GlyphIDs() []glyph.ID {
	set := make(map[glyph.ID]bool, len(m.Glyphs)+1)
	for _, gid := range m.Glyphs {
		set[gid] = true
	}
	delete(set, 0)
	gids := maps.Keys(set)
	slices.Sort(gids)
	return append([]glyph.ID{0}, gids...)
}
