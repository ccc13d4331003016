package epubfont

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// opfPackage represents the root <package> element of an OPF file.
// Only the parts needed to identify the book and its navigation documents
// are decoded.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
}

// opfMetadata holds the identifier elements of the OPF metadata.
type opfMetadata struct {
	Identifiers []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ identifier"`
}

// opfDCElement holds a Dublin Core element with optional OPF attributes.
type opfDCElement struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr"`
	Scheme string `xml:"scheme,attr"`
}

// opfManifest wraps the <manifest> element.
type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

// opfManifestItem represents a single <item> in the manifest.
type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// parseOPF parses the OPF file content and returns the parsed package structure.
func parseOPF(data []byte) (*opfPackage, error) {
	data = preprocessHTMLEntities(data)
	data = stripBOM(data)

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("epubfont: parse OPF: %w", err)
	}

	if pkg.Version == "" {
		// Default to 2.0 if version attribute is missing.
		pkg.Version = "2.0"
	}

	return &pkg, nil
}

// uniqueIdentifier returns the dc:identifier referenced by the package's
// unique-identifier attribute. If the reference does not resolve, the first
// identifier is used.
func (p *opfPackage) uniqueIdentifier() string {
	ids := p.Metadata.Identifiers
	for _, id := range ids {
		if p.UniqueIdentifier != "" && id.ID == p.UniqueIdentifier {
			return strings.TrimSpace(id.Value)
		}
	}
	if len(ids) > 0 {
		return strings.TrimSpace(ids[0].Value)
	}
	return ""
}

// identifiers returns all dc:identifier values with their schemes.
func (p *opfPackage) identifiers() []opfDCElement {
	return p.Metadata.Identifiers
}

// manifestPaths returns the archive paths of all manifest items carrying
// the given property (e.g. "nav"), in manifest order. opfPath is the location
// of the package document, against which hrefs are resolved.
func (p *opfPackage) manifestPaths(opfPath, property string) []string {
	var paths []string
	for _, item := range p.Manifest.Items {
		for _, prop := range strings.Fields(item.Properties) {
			if prop != property {
				continue
			}
			if resolved := resolveRelativePath(opfPath, hrefWithoutFragment(item.Href)); resolved != "" {
				paths = append(paths, resolved)
			}
			break
		}
	}
	return paths
}
