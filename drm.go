package epubfont

import (
	"encoding/xml"
	"strings"
)

// encryptionFilePath is the standard path for the encryption descriptor.
const encryptionFilePath = "META-INF/encryption.xml"

// sinfFilePath is the path that indicates Apple FairPlay DRM.
const sinfFilePath = "META-INF/sinf.xml"

// Font obfuscation algorithm URIs – these do NOT constitute DRM.
var fontObfuscationAlgorithms = map[string]bool{
	idpfObfuscation:  true,
	adobeObfuscation: true,
}

// Known DRM namespace prefixes found in KeyInfo child elements or algorithm URIs.
var drmSignatures = []string{
	"http://ns.adobe.com/adept",      // Adobe ADEPT
	"http://readium.org/2014/01/lcp", // Readium LCP
}

// XML structures for parsing encryption.xml.

type xmlEncryption struct {
	XMLName       xml.Name           `xml:"encryption"`
	EncryptedData []xmlEncryptedData `xml:"EncryptedData"`
}

type xmlEncryptedData struct {
	EncryptionMethod xmlEncryptionMethod `xml:"EncryptionMethod"`
	KeyInfo          xmlKeyInfo          `xml:"KeyInfo"`
	CipherData       xmlCipherData       `xml:"CipherData"`
}

type xmlEncryptionMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

type xmlKeyInfo struct {
	InnerXML string `xml:",innerxml"`
}

type xmlCipherData struct {
	CipherReference struct {
		URI string `xml:"URI,attr"`
	} `xml:"CipherReference"`
}

// checkDRM parses META-INF/encryption.xml (if present) and determines whether
// the ePub is DRM-protected or merely uses font obfuscation.
//
// Returns:
//   - (nil, nil)             – no encryption.xml found or it's empty
//   - (map, nil)             – only font obfuscation entries, keyed by entry name
//   - (nil, ErrDRMProtected) – real DRM encryption detected
func (a *Archive) checkDRM() (map[string]string, error) {
	// Check for Apple FairPlay indicator first.
	if a.findFile(sinfFilePath) != nil {
		return nil, ErrDRMProtected
	}

	f := a.findFile(encryptionFilePath)
	if f == nil {
		return nil, nil
	}

	data, err := readZipFile(f)
	if err != nil {
		return nil, err
	}

	var enc xmlEncryption
	if err := xml.Unmarshal(stripBOM(data), &enc); err != nil {
		// If we can't parse it, treat conservatively as potential DRM.
		return nil, ErrDRMProtected
	}

	var obfuscated map[string]string
	for _, ed := range enc.EncryptedData {
		algo := strings.TrimSpace(ed.EncryptionMethod.Algorithm)

		if !fontObfuscationAlgorithms[algo] || isDRMSignature(ed.KeyInfo.InnerXML) {
			// Any EncryptedData that is NOT font obfuscation is treated as DRM.
			return nil, ErrDRMProtected
		}

		// Cipher references are relative to the container root.
		name := resolveRelativePath("", ed.CipherData.CipherReference.URI)
		if name == "" {
			continue
		}
		if zf := a.findFile(name); zf != nil {
			name = zf.Name
		} else {
			a.warnings = append(a.warnings, "obfuscated resource not in archive: "+name)
			continue
		}
		if obfuscated == nil {
			obfuscated = make(map[string]string)
		}
		obfuscated[name] = algo
	}

	return obfuscated, nil
}

// isDRMSignature checks whether s contains any known DRM namespace or identifier.
func isDRMSignature(s string) bool {
	for _, sig := range drmSignatures {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}
