package epubfont

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// mimetypeName is the entry that has to come first in every ePub.
	mimetypeName = "mimetype"

	// expectedMimetype is the required content of the "mimetype" file in a valid ePub.
	expectedMimetype = "application/epub+zip"
)

// Archive is an opened ePub container.
// Use Open or NewReader to create an Archive instance.
//
// Reading entries is safe for concurrent use; zip.File.Open works on the
// shared io.ReaderAt. Close must not be called while readers are active.
type Archive struct {
	zip        *zip.Reader
	zipExact   map[string]*zip.File // exact-match ZIP file index
	zipLower   map[string]*zip.File // lowercase ZIP file index
	closer     io.Closer            // non-nil only when created via Open()
	entries    []Entry
	duplicates map[string]int // name → number of occurrences, only names seen twice or more
	opfPath    string
	pkg        *opfPackage       // nil if no package document could be read
	obfuscated map[string]string // entry name → obfuscation algorithm
	warnings   []string
}

// Open opens the ePub file at the given path.
// The caller must call Close when done reading from the archive.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("epubfont: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("epubfont: stat %s: %w", path, err)
	}
	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("epubfont: open %s: %w: %v", path, ErrInvalidArchive, err)
	}

	a, err := initArchive(zr, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

// NewReader creates an Archive from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r; Close only cleans
// up internal state.
func NewReader(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epubfont: open zip: %w: %v", ErrInvalidArchive, err)
	}

	return initArchive(zr, nil)
}

// initArchive performs common initialisation: indexing, mimetype validation,
// DRM detection and locating the package document.
func initArchive(zr *zip.Reader, closer io.Closer) (*Archive, error) {
	a := &Archive{
		zip:    zr,
		closer: closer,
	}

	// Build ZIP file index for O(1) lookups.
	a.buildZipIndex()

	a.validateMimetype()

	// Real DRM makes the content unreadable, obfuscation only touches fonts.
	obfuscated, err := a.checkDRM()
	if err != nil {
		return nil, err
	}
	a.obfuscated = obfuscated

	// The package document is optional for our purposes: content documents
	// and fonts are found by name. Without it, nav documents cannot be told
	// apart and obfuscated fonts cannot be keyed.
	if err := a.loadPackage(); err != nil {
		a.warnings = append(a.warnings, err.Error())
	}

	tracer().Debugf("opened archive with %d entries, %d warnings", len(a.entries), len(a.warnings))
	return a, nil
}

// loadPackage locates and parses the OPF package document.
func (a *Archive) loadPackage() error {
	opfPath, err := a.locatePackage()
	if err != nil {
		return err
	}
	f := a.findFile(opfPath)
	if f == nil {
		return fmt.Errorf("epubfont: OPF file not found in archive: %s: %w", opfPath, ErrFileNotFound)
	}
	data, err := readZipFile(f)
	if err != nil {
		return fmt.Errorf("epubfont: read OPF file: %w", err)
	}
	pkg, err := parseOPF(data)
	if err != nil {
		return err
	}
	a.opfPath = f.Name
	a.pkg = pkg
	return nil
}

// validateMimetype checks that the first ZIP entry is named "mimetype" and
// contains "application/epub+zip". Deviations are recorded as warnings.
func (a *Archive) validateMimetype() {
	if len(a.zip.File) == 0 {
		a.warnings = append(a.warnings, "empty ZIP archive; mimetype entry missing")
		return
	}

	first := a.zip.File[0]
	if first.Name != mimetypeName {
		a.warnings = append(a.warnings, "first ZIP entry is not \"mimetype\"")
		return
	}
	if first.Method != zip.Store {
		a.warnings = append(a.warnings, "mimetype entry is compressed")
	}

	data, err := readZipFile(first)
	if err != nil {
		a.warnings = append(a.warnings, fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}

	if string(data) != expectedMimetype {
		a.warnings = append(a.warnings, fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
}

// Close releases resources held by the Archive. When the Archive was created via
// Open, Close closes the underlying file. Close is idempotent.
func (a *Archive) Close() error {
	if a.closer != nil {
		err := a.closer.Close()
		a.closer = nil
		return err
	}
	return nil
}

// Entries returns the entries of the archive in their stored order.
func (a *Archive) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return len(a.entries)
}

// ReadFile reads a file from the ePub archive by its ZIP-internal path.
// The lookup is case-insensitive as a fallback. If the name occurs more
// than once, the first entry wins.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f := a.findFile(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return readZipFile(f)
}

// ReadEntry reads the decompressed content of the entry at index.
func (a *Archive) ReadEntry(index int) ([]byte, error) {
	if index < 0 || index >= len(a.zip.File) {
		return nil, fmt.Errorf("%w: entry index %d", ErrFileNotFound, index)
	}
	return readZipFile(a.zip.File[index])
}

// Warnings returns the list of non-fatal warnings accumulated while opening.
func (a *Archive) Warnings() []string {
	return append([]string(nil), a.warnings...)
}

// UniqueIdentifier returns the package's unique identifier, or an empty
// string if the package document is missing.
func (a *Archive) UniqueIdentifier() string {
	if a.pkg == nil {
		return ""
	}
	return a.pkg.uniqueIdentifier()
}

// Obfuscation returns the font obfuscation algorithm declared for the named
// entry in META-INF/encryption.xml, or an empty string.
func (a *Archive) Obfuscation(name string) string {
	return a.obfuscated[name]
}

// isDuplicate reports whether more than one entry carries name.
func (a *Archive) isDuplicate(name string) bool {
	return a.duplicates[name] > 1
}

// buildZipIndex builds exact-match and lowercase ZIP file indexes for O(1) lookups,
// the ordered entry list and the duplicate-name census.
func (a *Archive) buildZipIndex() {
	a.zipExact = make(map[string]*zip.File, len(a.zip.File))
	a.zipLower = make(map[string]*zip.File, len(a.zip.File))
	a.entries = make([]Entry, 0, len(a.zip.File))
	for i, f := range a.zip.File {
		a.entries = append(a.entries, Entry{
			Index:            i,
			Name:             f.Name,
			Method:           f.Method,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
			Modified:         f.Modified,
		})
		if _, exists := a.zipExact[f.Name]; !exists {
			a.zipExact[f.Name] = f // first match wins for exact
		} else {
			if a.duplicates == nil {
				a.duplicates = make(map[string]int)
			}
			if a.duplicates[f.Name] == 0 {
				a.duplicates[f.Name] = 1
				a.warnings = append(a.warnings, fmt.Sprintf("duplicate entry name %q", f.Name))
			}
			a.duplicates[f.Name]++
		}
		lower := strings.ToLower(f.Name)
		if _, exists := a.zipLower[lower]; !exists {
			a.zipLower[lower] = f // first match wins for case-insensitive
		}
	}
}

// findFile looks up a ZIP entry by path using the pre-built index.
// It tries an exact match first, then falls back to a case-insensitive match.
func (a *Archive) findFile(name string) *zip.File {
	if f, ok := a.zipExact[name]; ok {
		return f
	}
	if f, ok := a.zipLower[strings.ToLower(name)]; ok {
		return f
	}
	return nil
}
