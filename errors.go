package epubfont

import "errors"

// Sentinel errors returned by the epubfont package.
var (
	// ErrInvalidArchive indicates the file is not a readable ZIP container.
	ErrInvalidArchive = errors.New("epubfont: invalid archive")

	// ErrDRMProtected indicates the ePub file is protected by DRM
	// (e.g., Adobe ADEPT, Apple FairPlay, Readium LCP). Its content
	// cannot be read, so its fonts cannot be subsetted.
	ErrDRMProtected = errors.New("epubfont: file is DRM protected")

	// ErrFileNotFound indicates the requested file does not exist
	// in the ePub archive.
	ErrFileNotFound = errors.New("epubfont: file not found in archive")

	// ErrDuplicateEntry indicates that an entry the rewriter must
	// substitute or place first occurs more than once in the archive.
	ErrDuplicateEntry = errors.New("epubfont: duplicate archive entry")

	// ErrFontSubset wraps a failure to map or subset one font resource.
	// The font's entry name is part of the error message.
	ErrFontSubset = errors.New("epubfont: cannot subset font")
)
