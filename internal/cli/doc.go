// Package cli holds the pieces shared by the epub-font-subset and epub-count
// commands: console setup, tracing configuration and the expansion of
// command line arguments into ePub files.
package cli

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'epubfont.cli'
func tracer() tracing.Trace {
	return tracing.Select("epubfont.cli")
}
