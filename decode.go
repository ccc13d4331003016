package epubfont

import (
	"bytes"
	"fmt"
	"regexp"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// xmlDeclEncoding matches the encoding pseudo-attribute of an XML declaration.
var xmlDeclEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*?\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// utf8BOM is the byte order mark as it appears after decoding.
var utf8BOM = []byte("\uFEFF")

// toUTF8 converts a content document to UTF-8.
//
// A byte order mark wins over an XML declaration, which wins over a
// <meta charset> element. Undeclared content that is valid UTF-8 stays
// UTF-8; the HTML default of windows-1252 applies only to invalid input.
func toUTF8(data []byte) ([]byte, error) {
	e, name := detectEncoding(data)
	if name == "utf-8" {
		return stripBOM(data), nil
	}
	out, _, err := transform.Bytes(e.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("epubfont: decode %s: %w", name, err)
	}
	tracer().Debugf("decoded %d bytes of %s content", len(data), name)
	return bytes.TrimPrefix(out, utf8BOM), nil
}

// detectEncoding returns the encoding of data and its canonical name.
func detectEncoding(data []byte) (encoding.Encoding, string) {
	if e, name, certain := charset.DetermineEncoding(data, ""); certain {
		return e, name // byte order mark
	}
	if m := xmlDeclEncoding.FindSubmatch(data); m != nil {
		if e, name := charset.Lookup(string(m[1])); e != nil {
			return e, name
		}
	}
	e, name, _ := charset.DetermineEncoding(data, "")
	if name == "windows-1252" && utf8.Valid(data) {
		return encoding.Nop, "utf-8"
	}
	return e, name
}
