package epubfont

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

const packageMediaType = "application/oebps-package+xml"

// buildContainerXML builds a container.xml from "full-path media-type" pairs.
// A pair without a media type gets the package media type.
func buildContainerXML(rootfiles ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
`)
	for _, rf := range rootfiles {
		fullPath, mediaType, ok := strings.Cut(rf, " ")
		if !ok {
			mediaType = packageMediaType
		}
		fmt.Fprintf(&sb, "    <rootfile full-path=%q media-type=%q/>\n", fullPath, mediaType)
	}
	sb.WriteString("  </rootfiles>\n</container>")
	return sb.String()
}

func TestLocatePackage(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    string
		wantErr error
	}{
		{
			name: "container.xml",
			files: map[string]string{
				"META-INF/container.xml": buildContainerXML("OEBPS/content.opf"),
				"OEBPS/content.opf":      "<package/>",
			},
			want: "OEBPS/content.opf",
		},
		{
			name:  "case-insensitive container path",
			files: map[string]string{"meta-inf/Container.XML": buildContainerXML("OEBPS/content.opf")},
			want:  "OEBPS/content.opf",
		},
		{
			name:  "container.xml with BOM",
			files: map[string]string{"META-INF/container.xml": "\xEF\xBB\xBF" + buildContainerXML("OPS/book.opf")},
			want:  "OPS/book.opf",
		},
		{
			name:  "scan for .opf without container.xml",
			files: map[string]string{"content.opf": "<package/>"},
			want:  "content.opf",
		},
		{
			name:  "scan matches extension case-insensitively",
			files: map[string]string{"OEBPS/Book.OPF": "<package/>"},
			want:  "OEBPS/Book.OPF",
		},
		{
			name:    "nothing to find",
			files:   map[string]string{"readme.txt": "hello"},
			wantErr: errNoPackage,
		},
		{
			name:    "no rootfiles",
			files:   map[string]string{"META-INF/container.xml": buildContainerXML()},
			wantErr: errNoPackage,
		},
		{
			name:    "empty full-path",
			files:   map[string]string{"META-INF/container.xml": buildContainerXML("")},
			wantErr: errNoPackage,
		},
		{
			name: "rootfile with package media type preferred",
			files: map[string]string{"META-INF/container.xml": buildContainerXML(
				"",
				"OPS/preview.opf application/x-preview+xml",
				"OPS/book.opf",
			)},
			want: "OPS/book.opf",
		},
		{
			name: "first non-empty rootfile otherwise",
			files: map[string]string{"META-INF/container.xml": buildContainerXML(
				" application/x-other+xml",
				"OPS/first.opf application/x-other+xml",
				"OPS/second.opf application/x-another+xml",
			)},
			want: "OPS/first.opf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Archive{zip: buildTestZip(t, tt.files)}
			a.buildZipIndex()
			got, err := a.locatePackage()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("locatePackage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("locatePackage() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("locatePackage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadPackageFailureIsWarning(t *testing.T) {
	a := buildTestEPub(t, map[string]string{
		"mimetype":               expectedMimetype,
		"META-INF/container.xml": testContainerXML,
		"OEBPS/text.xhtml":       xhtml("<p>x</p>"),
	})
	if a.pkg != nil {
		t.Fatal("package loaded although content.opf is missing")
	}
	found := false
	for _, w := range a.Warnings() {
		if strings.Contains(w, "OEBPS/content.opf") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v; want one naming the missing OPF", a.Warnings())
	}
}
