package epubfont

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// errNoPackage is recorded as a warning when no OPF package document can be
// located.
var errNoPackage = errors.New("epubfont: no package document")

// containerXML models the META-INF/container.xml file used to locate the OPF.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

// rootFile represents a single <rootfile> element inside container.xml.
type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// containerPath is the well-known location of container.xml in an ePub archive.
const containerPath = "META-INF/container.xml"

// locatePackage determines the path of the OPF package document.
//
// It first tries META-INF/container.xml (case-insensitive lookup). If the file
// is missing, it falls back to scanning all ZIP entries for a ".opf" file.
func (a *Archive) locatePackage() (string, error) {
	if f := a.findFile(containerPath); f != nil {
		return parseContainerXML(f)
	}
	return fallbackFindOPF(a.zip)
}

// parseContainerXML reads and decodes a container.xml ZIP entry, returning
// the full-path of the first package rootfile.
func parseContainerXML(f *zip.File) (string, error) {
	data, err := readZipFile(f)
	if err != nil {
		return "", fmt.Errorf("epubfont: read container.xml: %w", err)
	}

	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("epubfont: parse container.xml: %w", err)
	}

	var fallbackPath string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return fullPath, nil
		}
		if fallbackPath == "" {
			fallbackPath = fullPath
		}
	}

	if fallbackPath == "" {
		return "", fmt.Errorf("epubfont: container.xml has no usable rootfile: %w", errNoPackage)
	}
	return fallbackPath, nil
}

// fallbackFindOPF scans the ZIP entries for the first file ending in ".opf"
// (case-insensitive).
func fallbackFindOPF(zr *zip.Reader) (string, error) {
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", errNoPackage
}
