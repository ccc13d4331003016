package epubfont

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// testEntry is one file of an in-memory test archive.
type testEntry struct {
	Name    string
	Content string
}

// buildTestZip creates an in-memory ZIP archive from the provided files map
// (path → content) and returns a *zip.Reader over the resulting bytes.
// Entry order follows map iteration and is therefore random.
// It calls t.Fatal on any error.
func buildTestZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("buildTestZip: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("buildTestZip: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestZip: close writer: %v", err)
	}

	data := buf.Bytes()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestZip: open reader: %v", err)
	}
	return r
}

// buildOrderedZip writes entries in the given order and returns the ZIP
// bytes. An entry named "mimetype" is stored uncompressed, everything else
// is deflated.
func buildOrderedZip(t testing.TB, entries []testEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		method := zip.Deflate
		if e.Name == mimetypeName {
			method = zip.Store
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		if err != nil {
			t.Fatalf("buildOrderedZip: create %s: %v", e.Name, err)
		}
		if _, err := io.WriteString(fw, e.Content); err != nil {
			t.Fatalf("buildOrderedZip: write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildOrderedZip: close writer: %v", err)
	}
	return buf.Bytes()
}

// epubEntries turns a files map into an entry list the way a well-formed
// ePub is laid out: "mimetype" first, the rest sorted by name.
func epubEntries(files map[string]string) []testEntry {
	var entries []testEntry
	if mt, ok := files[mimetypeName]; ok {
		entries = append(entries, testEntry{mimetypeName, mt})
	}
	names := make([]string, 0, len(files))
	for name := range files {
		if name != mimetypeName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, testEntry{name, files[name]})
	}
	return entries
}

// openTestArchive builds an ePub from entries and opens it with NewReader.
func openTestArchive(t *testing.T, entries []testEntry) *Archive {
	t.Helper()
	data := buildOrderedZip(t, entries)
	a, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("openTestArchive: %v", err)
	}
	return a
}

// buildTestEPub opens an ePub built from files, laid out by epubEntries.
func buildTestEPub(t *testing.T, files map[string]string) *Archive {
	t.Helper()
	return openTestArchive(t, epubEntries(files))
}

// buildTestEPubFile writes an ePub (ZIP) archive to a temporary file and returns
// the file path. This variant is useful for testing Open() which requires a file path.
func buildTestEPubFile(t *testing.T, files map[string]string) string {
	t.Helper()
	data := buildOrderedZip(t, epubEntries(files))
	fp := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(fp, data, 0644); err != nil {
		t.Fatalf("buildTestEPubFile: write file: %v", err)
	}
	return fp
}

// readZipEntries returns the entries of the ZIP data in order, with their
// decompressed content.
func readZipEntries(t *testing.T, data []byte) ([]*zip.File, map[string][]byte) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("readZipEntries: %v", err)
	}
	content := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		b, err := readZipFile(f)
		if err != nil {
			t.Fatalf("readZipEntries: %s: %v", f.Name, err)
		}
		content[f.Name] = b
	}
	return zr.File, content
}

// testContainerXML points to OEBPS/content.opf.
const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// testOPF returns an EPUB 3 package document with the given unique
// identifier and manifest items. Each item is "href" or "href properties".
func testOPF(uid string, items ...string) string {
	var manifest strings.Builder
	for i, item := range items {
		href, props, _ := strings.Cut(item, " ")
		fmt.Fprintf(&manifest, `    <item id="i%d" href="%s" media-type="application/xhtml+xml"`, i, href)
		if props != "" {
			fmt.Fprintf(&manifest, ` properties="%s"`, props)
		}
		manifest.WriteString("/>\n")
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package version="3.0" xmlns="http://www.idpf.org/2007/opf" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="bookid">%s</dc:identifier>
    <dc:title>Test Book</dc:title>
  </metadata>
  <manifest>
%s  </manifest>
</package>`, uid, manifest.String())
}

// xhtml wraps body in a minimal XHTML content document.
func xhtml(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body>` +
		body + `</body></html>`
}
