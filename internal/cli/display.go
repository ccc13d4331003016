package cli

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/simp-lee/epubfont"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InitDisplay sets up the pterm prefixes. We use pterm for moderately fancy
// output.
func InitDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Warning.Prefix = pterm.Prefix{
		Text:  " Warn",
		Style: pterm.NewStyle(pterm.BgYellow, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

var numbers = message.NewPrinter(language.English)

// FormatCount formats n with thousands separators.
func FormatCount(n int) string {
	return numbers.Sprintf("%d", n)
}

// FontTable returns the rows of a table describing the fonts of report,
// header first.
func FontTable(report *epubfont.Report) [][]string {
	data := [][]string{{"Font", "Status", "Before", "After", "Obfuscation"}}
	for _, f := range report.Fonts {
		after := "-"
		if f.Status == epubfont.FontSubsetted {
			after = FormatCount(f.SubsetSize)
		}
		data = append(data, []string{
			f.Name,
			f.Status.String(),
			FormatCount(f.OriginalSize),
			after,
			obfuscationLabel(f.Obfuscation),
		})
	}
	return data
}

// RenderFontTable prints the font table of report.
func RenderFontTable(report *epubfont.Report) error {
	if len(report.Fonts) == 0 {
		return nil
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(FontTable(report)).Render(); err != nil {
		return fmt.Errorf("render font table: %w", err)
	}
	return nil
}

func obfuscationLabel(uri string) string {
	switch uri {
	case "":
		return "-"
	case "http://www.idpf.org/2008/embedding":
		return "idpf"
	case "http://ns.adobe.com/pdf/enc#RC":
		return "adobe"
	}
	return strconv.Quote(uri)
}
