package epubfont

import "strings"

// fontSuffixes lists the file extensions of embeddable font resources.
var fontSuffixes = []string{".ttf", ".otf", ".woff", ".woff2"}

// IsFontResource reports whether the entry name denotes an embedded font.
// The extension is matched case-insensitively.
func IsFontResource(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range fontSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// FontResources returns the font entries of the archive in archive order.
// A font name occurring more than once is listed once.
func (a *Archive) FontResources() []Entry {
	var fonts []Entry
	seen := make(map[string]bool)
	for _, e := range a.entries {
		if !IsFontResource(e.Name) || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		fonts = append(fonts, e)
	}
	return fonts
}
