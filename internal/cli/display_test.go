package cli

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/simp-lee/epubfont"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%d) = %q; want %q", tt.n, got, tt.want)
		}
	}
}

func TestFontTable(t *testing.T) {
	report := &epubfont.Report{
		Fonts: []epubfont.FontReport{
			{
				Name:         "OEBPS/fonts/a.ttf",
				Status:       epubfont.FontSubsetted,
				OriginalSize: 12000,
				SubsetSize:   1500,
				Obfuscation:  "http://www.idpf.org/2008/embedding",
			},
			{
				Name:         "OEBPS/fonts/b.otf",
				Status:       epubfont.FontSkipped,
				OriginalSize: 800,
				Err:          errors.New("broken"),
			},
		},
	}
	want := [][]string{
		{"Font", "Status", "Before", "After", "Obfuscation"},
		{"OEBPS/fonts/a.ttf", "subsetted", "12,000", "1,500", "idpf"},
		{"OEBPS/fonts/b.otf", "skipped", "800", "-", "-"},
	}
	if diff := cmp.Diff(want, FontTable(report)); diff != "" {
		t.Errorf("FontTable mismatch (-want +got):\n%s", diff)
	}
}
