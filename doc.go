// Package epubfont shrinks the fonts embedded in ePub files by removing every
// glyph the book's text does not use.
//
// The pipeline reads an archive once to collect the characters of all content
// documents, subsets every embedded font against that character set, and then
// rewrites the archive with the reduced fonts substituted in place. All other
// entries are copied unchanged, and the "mimetype" marker entry stays first
// and uncompressed.
//
// # Subsetting a file in place
//
//	report, err := epubfont.ProcessFile("book.epub", epubfont.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Characters, len(report.Fonts))
//
// The original file is only replaced after the new archive has been written
// and closed successfully. A crash before that point leaves the original
// untouched; at worst a "book.epub.opt" temporary file remains.
//
// # Lower-level access
//
// [Open] and [NewReader] return an [Archive]. [CollectCharacters] builds the
// required character set, [Archive.FontResources] lists the font entries,
// [SubsetFonts] runs the font worker pool, and [Rewrite] / [ReplaceFile]
// write the result. Font binary handling is isolated behind the
// [FontSubsetter] interface; package fontsubset provides the default
// implementation.
//
// # Counting characters
//
// [CountArchive] and [CountFiles] report the number of non-whitespace
// characters in a book's rendered text.
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - [ErrInvalidArchive] – the file is not a ZIP container
//   - [ErrDRMProtected] – the file is DRM encrypted
//   - [ErrFileNotFound] – a requested file is not in the archive
//   - [ErrDuplicateEntry] – an entry the rewriter depends on is duplicated
//   - [ErrFontSubset] – a font could not be mapped or subsetted
package epubfont

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'epubfont'.
func tracer() tracing.Trace {
	return tracing.Select("epubfont")
}
