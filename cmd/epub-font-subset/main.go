// Command epub-font-subset shrinks the fonts embedded in ePub files to the
// glyphs the text of each book uses. Files are replaced in place.
//
//	epub-font-subset [flags] file.epub...
package main

import (
	"compress/flate"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
	"github.com/simp-lee/epubfont"
	"github.com/simp-lee/epubfont/fontsubset"
	"github.com/simp-lee/epubfont/internal/cli"
)

// tracer traces with key 'epubfont.cli'
func tracer() tracing.Trace {
	return tracing.Select("epubfont.cli")
}

func main() {
	os.Exit(run())
}

func run() int {
	cli.InitDisplay()

	workers := flag.Int("workers", runtime.NumCPU(), "Number of fonts subsetted in parallel")
	skipBad := flag.Bool("skip-bad-fonts", false, "Keep fonts that cannot be subsetted instead of failing the file")
	retain := flag.String("retain", " ", "Characters kept in every font")
	level := flag.Int("level", flate.DefaultCompression, "Deflate level of rewritten entries [1..9], -1 default, -2 Huffman only")
	noVerify := flag.Bool("no-verify", false, "Do not re-read and check subsetted fonts")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	logAdapter := flag.String("log", "go", "Trace adapter [go|logrus]")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: epub-font-subset [flags] file.epub...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := cli.SetupTracing(cli.TracingConfig{Adapter: *logAdapter, Level: *tlevel}); err != nil {
		pterm.Error.Println(err.Error())
		return 2
	}

	files, warnings := cli.Inputs(flag.Args(), false)
	for _, w := range warnings {
		pterm.Warning.Println(w)
	}
	if len(files) == 0 {
		pterm.Error.Println("no input files")
		return 2
	}

	subsetOpts := []fontsubset.Option{fontsubset.WithRetain([]rune(*retain)...)}
	if *noVerify {
		subsetOpts = append(subsetOpts, fontsubset.WithoutVerify())
	}
	opts := epubfont.Options{
		Workers:          *workers,
		Subsetter:        fontsubset.New(subsetOpts...),
		CompressionLevel: *level,
	}
	if *skipBad {
		opts.Policy = epubfont.SkipOnError
	}

	failed := 0
	for _, path := range files {
		if !processFile(path, opts) {
			failed++
		}
	}
	if failed > 0 {
		pterm.Error.Printf("%d of %d files failed\n", failed, len(files))
		return 1
	}
	return 0
}

func processFile(path string, opts epubfont.Options) bool {
	pterm.Info.Printf("Processing %s\n", path)
	report, err := epubfont.ProcessFile(path, opts)
	if report != nil {
		for _, w := range report.Warnings {
			pterm.Warning.Printf("%s: %s\n", path, w)
		}
		pterm.Printf("  %s required characters, %d fonts\n",
			cli.FormatCount(report.Characters), len(report.Fonts))
		if rerr := cli.RenderFontTable(report); rerr != nil {
			tracer().Errorf("%v", rerr)
		}
		for _, f := range report.Fonts {
			if f.Status == epubfont.FontSkipped {
				pterm.Warning.Printf("%s\n", f.Err)
			}
		}
	}
	if err != nil {
		pterm.Error.Printf("%s: %v\n", path, err)
		return false
	}
	if len(report.Fonts) == 0 {
		pterm.Info.Printf("%s has no fonts, left unchanged\n", path)
		return true
	}
	pterm.Success.Printf("%s done, %s bytes saved\n", path, cli.FormatCount(report.Saved()))
	return true
}
