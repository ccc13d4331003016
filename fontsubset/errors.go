package fontsubset

import "errors"

var (
	// ErrUnsupportedFont is returned for data that is not a font container
	// the subsetter can read (e.g. font collections or CFF2).
	ErrUnsupportedFont = errors.New("fontsubset: unsupported font")

	// ErrNoCmap is returned for fonts without a character-to-glyph table.
	ErrNoCmap = errors.New("fontsubset: font has no cmap table")

	// ErrBadCmap is returned when the cmap table cannot be parsed or has no
	// usable subtable.
	ErrBadCmap = errors.New("fontsubset: malformed cmap table")

	// ErrSubset is returned when the reduced font cannot be built.
	ErrSubset = errors.New("fontsubset: cannot build subset")

	// ErrVerify is returned when a reduced font fails verification.
	ErrVerify = errors.New("fontsubset: subset verification failed")
)
