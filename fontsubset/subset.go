package fontsubset

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/slices"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/glyph"
)

// Option configures a Subsetter.
type Option func(*Subsetter)

// WithRetain keeps the glyphs of runes in every subset, as far as the font
// has them, in addition to the requested characters.
func WithRetain(runes ...rune) Option {
	return func(s *Subsetter) {
		s.retain = append(s.retain, runes...)
	}
}

// WithoutVerify switches off re-parsing and checking of every result.
func WithoutVerify() Option {
	return func(s *Subsetter) {
		s.verify = false
	}
}

// Subsetter builds reduced fonts. It holds no per-font state and is safe for
// concurrent use.
type Subsetter struct {
	retain []rune
	verify bool
}

// New creates a Subsetter. Without options nothing is retained beyond the
// requested characters and every result is verified.
func New(options ...Option) *Subsetter {
	s := &Subsetter{verify: true}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// SubsetFont returns a font containing only the glyphs needed for runes.
// data may be TrueType, OpenType, WOFF or WOFF2; the result is TrueType or
// OpenType. Runes the font has no glyph for are ignored.
func (s *Subsetter) SubsetFont(data []byte, runes []rune) (out []byte, err error) {
	// The table writers panic on inconsistent input.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrSubset, r)
		}
	}()

	sfntData, mediaType, err := toSFNT(data)
	if err != nil {
		return nil, err
	}

	mapping, err := MapRunes(sfntData, s.wanted(runes))
	if err != nil {
		return nil, err
	}

	f, err := sfnt.Read(bytes.NewReader(sfntData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFont, err)
	}
	dropUnknownGlyphs(mapping, f.NumGlyphs())

	glyphs := mapping.GlyphIDs()
	newGID := make(map[glyph.ID]glyph.ID, len(glyphs))
	for i, gid := range glyphs {
		newGID[gid] = glyph.ID(i)
	}
	remapped := make(map[rune]glyph.ID, len(mapping.Glyphs))
	for r, gid := range mapping.Glyphs {
		remapped[r] = newGID[gid]
	}

	// Font.Subset re-encodes existing cmap subtables and layout tables;
	// both are replaced or dropped.
	f.CMapTable = nil
	f.Gdef = nil
	f.Gsub = nil
	f.Gpos = nil
	sub := f.Subset(glyphs)
	sub.CMapTable = unicodeCmap(remapped)

	buf := &bytes.Buffer{}
	if _, err := sub.Write(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubset, err)
	}
	tracer().Debugf("%s font: %d → %d glyphs, %d → %d bytes",
		mediaType, f.NumGlyphs(), sub.NumGlyphs(), len(data), buf.Len())

	if s.verify && len(remapped) > 0 {
		if err := verify(buf.Bytes(), remapped, sub.NumGlyphs()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// wanted merges the requested runes with the retained ones.
func (s *Subsetter) wanted(runes []rune) []rune {
	if len(s.retain) == 0 {
		return runes
	}
	all := make([]rune, 0, len(runes)+len(s.retain))
	all = append(all, runes...)
	all = append(all, s.retain...)
	slices.Sort(all)
	return slices.Compact(all)
}

// dropUnknownGlyphs removes mappings to glyphs beyond the end of the font.
func dropUnknownGlyphs(m *Mapping, numGlyphs int) {
	for r, gid := range m.Glyphs {
		if int(gid) >= numGlyphs {
			tracer().Infof("cmap maps %U to glyph %d of %d, ignoring", r, gid, numGlyphs)
			delete(m.Glyphs, r)
			m.Missing = append(m.Missing, r)
		}
	}
}

// unicodeCmap builds the cmap of a subset: a format 4 subtable for the
// Basic Multilingual Plane and, if needed, a format 12 subtable covering
// all characters.
func unicodeCmap(glyphs map[rune]glyph.ID) cmap.Table {
	bmp := cmap.Format4{}
	var full cmap.Format12
	for r, gid := range glyphs {
		if r <= 0xFFFF {
			bmp[uint16(r)] = gid
			continue
		}
		if full == nil {
			full = cmap.Format12{}
		}
	}
	bmpData := bmp.Encode(0)
	table := cmap.Table{
		{PlatformID: 0, EncodingID: 3}: bmpData,
		{PlatformID: 3, EncodingID: 1}: bmpData,
	}
	if full != nil {
		for r, gid := range glyphs {
			full[uint32(r)] = gid
		}
		fullData := full.Encode(0)
		table[cmap.Key{PlatformID: 0, EncodingID: 4}] = fullData
		table[cmap.Key{PlatformID: 3, EncodingID: 10}] = fullData
	}
	return table
}
