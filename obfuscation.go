package epubfont

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// Font obfuscation algorithm URIs as they appear in META-INF/encryption.xml.
const (
	idpfObfuscation  = "http://www.idpf.org/2008/embedding"
	adobeObfuscation = "http://ns.adobe.com/pdf/enc#RC"
)

// Number of leading bytes of a font the algorithms XOR with the key.
const (
	idpfObfuscatedLen  = 1040
	adobeObfuscatedLen = 1024
)

// obfuscationKey derives the XOR key for algorithm from the package metadata.
// It returns the key and the number of leading bytes it applies to.
func (a *Archive) obfuscationKey(algorithm string) ([]byte, int, error) {
	if a.pkg == nil {
		return nil, 0, fmt.Errorf("epubfont: no package identifier to derive obfuscation key: %w", errNoPackage)
	}
	switch algorithm {
	case idpfObfuscation:
		uid := stripXMLSpace(a.pkg.uniqueIdentifier())
		if uid == "" {
			return nil, 0, fmt.Errorf("epubfont: package has no unique identifier")
		}
		sum := sha1.Sum([]byte(uid))
		return sum[:], idpfObfuscatedLen, nil
	case adobeObfuscation:
		key, err := adobeKey(a.pkg.identifiers())
		if err != nil {
			return nil, 0, err
		}
		return key, adobeObfuscatedLen, nil
	}
	return nil, 0, fmt.Errorf("epubfont: unknown obfuscation algorithm %q", algorithm)
}

// adobeKey returns the 16 bytes of the first UUID identifier of the package.
func adobeKey(ids []opfDCElement) ([]byte, error) {
	for _, id := range ids {
		v := strings.TrimSpace(id.Value)
		lower := strings.ToLower(v)
		switch {
		case strings.HasPrefix(lower, "urn:uuid:"):
			v = v[len("urn:uuid:"):]
		case strings.EqualFold(id.Scheme, "uuid"):
		default:
			continue
		}
		key, err := hex.DecodeString(strings.ReplaceAll(v, "-", ""))
		if err != nil || len(key) != 16 {
			continue
		}
		return key, nil
	}
	return nil, fmt.Errorf("epubfont: package has no UUID identifier for Adobe obfuscation")
}

// stripXMLSpace removes the XML whitespace characters (space, tab, CR, LF)
// from s.
func stripXMLSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

// xorPrefix returns a copy of data whose first n bytes are XORed with the
// repeated key. Applying it twice yields the input.
func xorPrefix(data, key []byte, n int) []byte {
	out := append([]byte(nil), data...)
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] ^= key[i%len(key)]
	}
	return out
}

// toggleObfuscation de-obfuscates or re-obfuscates the named font. Fonts
// without an obfuscation entry are returned unchanged.
func (a *Archive) toggleObfuscation(name string, data []byte) ([]byte, error) {
	algorithm := a.obfuscated[name]
	if algorithm == "" {
		return data, nil
	}
	key, n, err := a.obfuscationKey(algorithm)
	if err != nil {
		return nil, err
	}
	return xorPrefix(data, key, n), nil
}
