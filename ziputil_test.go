package epubfont

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// zipEntry returns the entry called name, or nil.
func zipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"OEBPS/content.opf", "text/ch1.xhtml", "OEBPS/text/ch1.xhtml"},
		{"OEBPS/content.opf", "../fonts/serif.otf", "fonts/serif.otf"},
		{"OEBPS/content.opf", "./fonts/serif.otf", "OEBPS/fonts/serif.otf"},
		{"OEBPS/content.opf", "fonts/My%20Serif.otf", "OEBPS/fonts/My Serif.otf"},
		{"OEBPS/content.opf", "  nav.xhtml ", "OEBPS/nav.xhtml"},
		{"content.opf", "ch1.xhtml", "ch1.xhtml"},
		{"a/b/c/d.opf", "../../e/f.html", "a/e/f.html"},
		{"", "OEBPS/fonts/a.ttf", "OEBPS/fonts/a.ttf"},
		{"OEBPS/content.opf", "../../../secret.txt", ""},
		{"OEBPS/content.opf", "/etc/passwd", ""},
		{"", "../fonts/a.ttf", ""},
	}
	for _, tt := range tests {
		if got := resolveRelativePath(tt.base, tt.href); got != tt.want {
			t.Errorf("resolveRelativePath(%q, %q) = %q; want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestIsSafePath(t *testing.T) {
	safe := []string{"mimetype", "OEBPS/fonts/a.otf", ".", "a/../b"}
	unsafe := []string{"..", "../", "../etc/passwd", "a/../../etc/passwd", "/etc/passwd", "OEBPS/../../secret"}
	for _, p := range safe {
		if !isSafePath(p) {
			t.Errorf("isSafePath(%q) = false; want true", p)
		}
	}
	for _, p := range unsafe {
		if isSafePath(p) {
			t.Errorf("isSafePath(%q) = true; want false", p)
		}
	}
}

func TestStripBOM(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	tests := []struct {
		in, want []byte
	}{
		{append(bom, "<?xml?>"...), []byte("<?xml?>")},
		{[]byte("<?xml?>"), []byte("<?xml?>")},
		{bom, []byte{}},
		{[]byte{}, []byte{}},
		{bom[:2], bom[:2]},
		{[]byte{'a', 0xEF, 0xBB, 0xBF}, []byte{'a', 0xEF, 0xBB, 0xBF}},
	}
	for _, tt := range tests {
		if got := stripBOM(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("stripBOM(% x) = % x; want % x", tt.in, got, tt.want)
		}
	}
}

func TestReadZipFile(t *testing.T) {
	zr := buildTestZip(t, map[string]string{
		"OEBPS/ch1.xhtml":   "<p>hi</p>",
		"OEBPS/empty.xhtml": "",
	})
	for name, want := range map[string]string{
		"OEBPS/ch1.xhtml":   "<p>hi</p>",
		"OEBPS/empty.xhtml": "",
	} {
		got, err := readZipFile(zipEntry(zr, name))
		if err != nil {
			t.Fatalf("readZipFile(%q) error = %v", name, err)
		}
		if string(got) != want {
			t.Errorf("readZipFile(%q) = %q; want %q", name, got, want)
		}
	}
}

func TestReadZipFile_Limit(t *testing.T) {
	zr := buildTestZip(t, map[string]string{"OEBPS/big.xhtml": strings.Repeat("A", 200)})
	f := zipEntry(zr, "OEBPS/big.xhtml")

	if _, err := readZipFileWithLimit(f, 100); err == nil {
		t.Error("readZipFileWithLimit() accepted an oversized entry")
	}
	if data, err := readZipFileWithLimit(f, 200); err != nil || len(data) != 200 {
		t.Errorf("readZipFileWithLimit() = %d bytes, %v; want 200 bytes", len(data), err)
	}
}

func TestReadZipFile_UnsafePath(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("../escape.xhtml"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		t.Fatal(err)
	}
	if _, err := readZipFile(zr.File[0]); err == nil {
		t.Error("readZipFile() read an entry outside the archive root")
	}
}

func TestBuildTestEPubFile(t *testing.T) {
	fp := buildTestEPubFile(t, map[string]string{
		"mimetype":               expectedMimetype,
		"META-INF/container.xml": "<container/>",
	})
	zrc, err := zip.OpenReader(fp)
	if err != nil {
		t.Fatalf("cannot open produced epub: %v", err)
	}
	defer zrc.Close()

	if len(zrc.File) == 0 || zrc.File[0].Name != mimetypeName {
		t.Fatal("mimetype is not the first entry in produced epub")
	}
	if zrc.File[0].Method != zip.Store {
		t.Errorf("mimetype method = %d; want Store", zrc.File[0].Method)
	}
}
