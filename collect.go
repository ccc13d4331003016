package epubfont

import (
	"fmt"
	"path"
	"strings"
)

// IsContentDocument reports whether the entry name denotes a content
// document whose text is rendered (".xhtml" or ".html").
func IsContentDocument(name string) bool {
	return strings.HasSuffix(name, ".xhtml") || strings.HasSuffix(name, ".html")
}

// IsTOCDocument reports whether the entry name is a table-of-contents
// document by name ("toc.xhtml" or "toc.html" in any directory).
func IsTOCDocument(name string) bool {
	base := path.Base(name)
	return base == "toc.xhtml" || base == "toc.html"
}

// navDocuments returns the set of entry names declared as navigation
// documents in the package manifest.
func (a *Archive) navDocuments() map[string]bool {
	if a.pkg == nil {
		return nil
	}
	nav := make(map[string]bool)
	for _, p := range a.pkg.manifestPaths(a.opfPath, "nav") {
		if f := a.findFile(p); f != nil {
			nav[f.Name] = true
		}
	}
	return nav
}

// textEntries returns the content documents whose text contributes to the
// book's characters, in archive order. TOC documents, by name or declared as
// navigation documents, are left out: their text repeats chapter titles and
// is often set in a font of its own.
func (a *Archive) textEntries() []Entry {
	nav := a.navDocuments()
	var docs []Entry
	for _, e := range a.entries {
		if !IsContentDocument(e.Name) || IsTOCDocument(e.Name) || nav[e.Name] {
			continue
		}
		if !isSafePath(e.Name) {
			tracer().Infof("skipping content document with unsafe path %q", e.Name)
			continue
		}
		docs = append(docs, e)
	}
	return docs
}

// CollectCharacters returns the union of the characters of all content
// documents of the archive. The result does not depend on entry order.
// A content document that cannot be read fails the whole archive.
func CollectCharacters(a *Archive) (CharSet, error) {
	chars := make(CharSet)
	for _, e := range a.textEntries() {
		data, err := a.ReadEntry(e.Index)
		if err != nil {
			return nil, fmt.Errorf("epubfont: read content document %s: %w", e.Name, err)
		}
		chars.Union(ExtractCharacters(data))
	}
	tracer().Debugf("collected %d distinct characters", chars.Len())
	return chars, nil
}
