// Command epub-count prints the number of non-whitespace characters in the
// text of ePub files, and their total.
//
//	epub-count [flags] path...
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/pterm/pterm"
	"github.com/simp-lee/epubfont"
	"github.com/simp-lee/epubfont/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.InitDisplay()

	walk := flag.Bool("w", false, "Walk directories for *.epub files")
	stream := flag.Bool("s", false, "Print each count as soon as it is known")
	workers := flag.Int("c", runtime.NumCPU(), "Number of files counted in parallel")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: epub-count [flags] path...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := cli.SetupTracing(cli.TracingConfig{Level: *tlevel}); err != nil {
		pterm.Error.Println(err.Error())
		return 2
	}

	files, warnings := cli.Inputs(flag.Args(), *walk)
	for _, w := range warnings {
		pterm.Warning.Println(w)
	}
	if len(files) == 0 {
		pterm.Error.Println("no input files")
		return 2
	}

	var onFile func(epubfont.FileCount)
	if *stream {
		onFile = printCount
	}
	counts := epubfont.CountFiles(files, *workers, onFile)
	if !*stream {
		for _, fc := range counts {
			printCount(fc)
		}
	}

	total, failed := 0, 0
	for _, fc := range counts {
		if fc.Err != nil {
			failed++
			continue
		}
		total += fc.Count
	}
	pterm.Printf("%s characters in %d files\n", cli.FormatCount(total), len(counts)-failed)
	if failed > 0 {
		pterm.Error.Printf("%d of %d files failed\n", failed, len(counts))
		return 1
	}
	return 0
}

func printCount(fc epubfont.FileCount) {
	if fc.Err != nil {
		pterm.Error.Printf("%s: %v\n", fc.Path, fc.Err)
		return
	}
	pterm.Printf("%12s  %s\n", cli.FormatCount(fc.Count), fc.Path)
}
