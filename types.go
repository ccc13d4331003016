package epubfont

import (
	"fmt"
	"time"
)

// Entry describes one file stored in an ePub archive, in archive order.
type Entry struct {
	// Index is the position of the entry in the ZIP central directory.
	Index int

	// Name is the ZIP-internal path (e.g., "OEBPS/Fonts/serif.otf").
	Name string

	// Method is the ZIP compression method (zip.Store or zip.Deflate).
	Method uint16

	// CompressedSize and UncompressedSize are the sizes recorded in the
	// central directory.
	CompressedSize   uint64
	UncompressedSize uint64

	// Modified is the modification time of the entry.
	Modified time.Time
}

// FontStatus reports what happened to a single font resource.
type FontStatus int

const (
	// FontSubsetted means the font was replaced by its subset.
	FontSubsetted FontStatus = iota

	// FontSkipped means the font could not be subsetted and was copied
	// unchanged (only under SkipOnError).
	FontSkipped
)

func (s FontStatus) String() string {
	switch s {
	case FontSubsetted:
		return "subsetted"
	case FontSkipped:
		return "skipped"
	}
	return fmt.Sprintf("FontStatus(%d)", int(s))
}

// FontReport describes the outcome for one font resource of an archive.
type FontReport struct {
	// Name is the entry name of the font in the archive.
	Name string

	// Status tells whether the font was replaced.
	Status FontStatus

	// OriginalSize is the size of the font as stored (before de-obfuscation).
	OriginalSize int

	// SubsetSize is the size of the replacement. Zero for skipped fonts.
	SubsetSize int

	// Obfuscation is the obfuscation algorithm URI, or empty for plain fonts.
	Obfuscation string

	// Err is the reason a font was skipped.
	Err error
}

// Report summarises the processing of one archive.
type Report struct {
	// Characters is the size of the required character set.
	Characters int

	// Fonts lists one report per font resource, sorted by entry name.
	Fonts []FontReport

	// Warnings holds the non-fatal findings made while opening the archive.
	Warnings []string
}

// Saved returns the number of bytes the subsetted fonts saved in total.
func (r *Report) Saved() int {
	saved := 0
	for _, f := range r.Fonts {
		if f.Status == FontSubsetted {
			saved += f.OriginalSize - f.SubsetSize
		}
	}
	return saved
}

// FileCount is the character count of one ePub file.
type FileCount struct {
	// Path is the file the count belongs to.
	Path string

	// Count is the number of non-whitespace characters of all content
	// documents.
	Count int

	// Err is set if the file could not be counted.
	Err error
}
