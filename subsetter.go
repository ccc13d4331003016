package epubfont

import (
	"compress/flate"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/simp-lee/epubfont/fontsubset"
	"golang.org/x/exp/slices"
)

// FontSubsetter reduces a font program to the glyphs needed to render runes.
// Implementations must be safe for concurrent use.
type FontSubsetter interface {
	SubsetFont(data []byte, runes []rune) ([]byte, error)
}

// FailurePolicy decides what happens when a single font cannot be subsetted.
type FailurePolicy int

const (
	// AbortOnError fails the whole archive on the first font error.
	// Nothing is written.
	AbortOnError FailurePolicy = iota

	// SkipOnError keeps a failing font unchanged and carries on.
	SkipOnError
)

// Options configures the subsetting pipeline. The zero value is usable.
type Options struct {
	// Workers is the number of fonts subsetted in parallel.
	// Zero means runtime.NumCPU().
	Workers int

	// Policy is applied to fonts that cannot be subsetted.
	Policy FailurePolicy

	// Subsetter does the per-font work. Nil means fontsubset.New().
	Subsetter FontSubsetter

	// CompressionLevel is the deflate level of rewritten entries.
	// Zero means flate.DefaultCompression.
	CompressionLevel int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Subsetter == nil {
		o.Subsetter = fontsubset.New()
	}
	if o.CompressionLevel == 0 {
		o.CompressionLevel = flate.DefaultCompression
	}
	return o
}

// SubsetFonts subsets every font resource of the archive against chars.
//
// Fonts are handed to a fixed pool of opts.Workers goroutines. The returned
// map holds the replacement bytes keyed by entry name; the reports are
// sorted by entry name. Under AbortOnError the first failure is returned
// and no map; under SkipOnError failing fonts are missing from the map and
// reported as FontSkipped.
func SubsetFonts(a *Archive, chars CharSet, opts Options) (map[string][]byte, []FontReport, error) {
	opts = opts.withDefaults()
	fonts := a.FontResources()
	runes := chars.Runes()

	workers := opts.Workers
	if workers > len(fonts) {
		workers = len(fonts)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		failed  atomic.Bool
		subsets = make(map[string][]byte, len(fonts))
		reports = make([]FontReport, 0, len(fonts))
	)
	tasks := make(chan Entry)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range tasks {
				data, report := a.subsetFont(e, runes, opts.Subsetter)
				if report.Err != nil {
					failed.Store(true)
				}
				mu.Lock()
				if report.Err == nil {
					subsets[e.Name] = data
				}
				reports = append(reports, report)
				mu.Unlock()
			}
		}()
	}
	for _, e := range fonts {
		if failed.Load() && opts.Policy == AbortOnError {
			break
		}
		tasks <- e
	}
	close(tasks)
	wg.Wait()

	slices.SortFunc(reports, func(x, y FontReport) int { return strings.Compare(x.Name, y.Name) })
	for i := range reports {
		if reports[i].Err == nil {
			continue
		}
		if opts.Policy == AbortOnError {
			return nil, reports, reports[i].Err
		}
		reports[i].Status = FontSkipped
		tracer().Infof("keeping font %s unchanged: %v", reports[i].Name, reports[i].Err)
	}
	return subsets, reports, nil
}

// subsetFont runs one font through de-obfuscation, subsetting and
// re-obfuscation.
func (a *Archive) subsetFont(e Entry, runes []rune, s FontSubsetter) ([]byte, FontReport) {
	report := FontReport{
		Name:        e.Name,
		Obfuscation: a.Obfuscation(e.Name),
	}
	fail := func(err error) ([]byte, FontReport) {
		report.Err = fmt.Errorf("%w %s: %w", ErrFontSubset, e.Name, err)
		return nil, report
	}

	raw, err := a.ReadEntry(e.Index)
	if err != nil {
		return fail(err)
	}
	report.OriginalSize = len(raw)

	plain, err := a.toggleObfuscation(e.Name, raw)
	if err != nil {
		return fail(err)
	}
	subset, err := s.SubsetFont(plain, runes)
	if err != nil {
		return fail(err)
	}
	out, err := a.toggleObfuscation(e.Name, subset)
	if err != nil {
		return fail(err)
	}
	report.SubsetSize = len(out)
	tracer().Debugf("font %s: %d → %d bytes", e.Name, report.OriginalSize, report.SubsetSize)
	return out, report
}

// Process collects the archive's characters, subsets its fonts and writes
// the rewritten archive to w. On error nothing useful has been written.
func Process(a *Archive, w io.Writer, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	report, fonts, err := prepare(a, opts)
	if err != nil {
		return report, err
	}
	if err := Rewrite(a, w, fonts, opts.CompressionLevel); err != nil {
		return report, err
	}
	return report, nil
}

// ProcessFile subsets the fonts of the ePub at path and replaces the file
// with the result. Archives without fonts are left as they are.
func ProcessFile(path string, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	report, fonts, err := prepare(a, opts)
	if err != nil {
		return report, err
	}
	if len(report.Fonts) == 0 {
		tracer().Infof("%s has no fonts, leaving it unchanged", path)
		return report, nil
	}
	if err := ReplaceFile(a, path, fonts, opts.CompressionLevel); err != nil {
		return report, err
	}
	return report, nil
}

// prepare runs the read-only half of the pipeline.
func prepare(a *Archive, opts Options) (*Report, map[string][]byte, error) {
	report := &Report{Warnings: a.Warnings()}
	chars, err := CollectCharacters(a)
	if err != nil {
		return report, nil, err
	}
	report.Characters = chars.Len()

	fonts, fontReports, err := SubsetFonts(a, chars, opts)
	report.Fonts = fontReports
	if err != nil {
		return report, nil, err
	}
	return report, fonts, nil
}
