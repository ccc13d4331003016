package epubfont

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// entityNameToNumeric maps lowercase HTML entity names to their XML numeric
// character references. encoding/xml does not recognise HTML named entities,
// so we convert them before parsing the OPF file.
var entityNameToNumeric = map[string][]byte{
	"nbsp": []byte("&#160;"), "mdash": []byte("&#8212;"), "ndash": []byte("&#8211;"),
	"hellip": []byte("&#8230;"),
	"lsquo": []byte("&#8216;"), "rsquo": []byte("&#8217;"),
	"ldquo": []byte("&#8220;"), "rdquo": []byte("&#8221;"),
	"copy": []byte("&#169;"), "reg": []byte("&#174;"), "trade": []byte("&#8482;"),
	"bull": []byte("&#8226;"), "middot": []byte("&#183;"),
	"eacute": []byte("&#233;"), "egrave": []byte("&#232;"),
	"ecirc": []byte("&#234;"), "euml": []byte("&#235;"),
	"aacute": []byte("&#225;"), "agrave": []byte("&#224;"),
	"acirc": []byte("&#226;"), "auml": []byte("&#228;"),
	"iacute": []byte("&#237;"), "igrave": []byte("&#236;"),
	"icirc": []byte("&#238;"), "iuml": []byte("&#239;"),
	"oacute": []byte("&#243;"), "ograve": []byte("&#242;"),
	"ocirc": []byte("&#244;"), "ouml": []byte("&#246;"),
	"uacute": []byte("&#250;"), "ugrave": []byte("&#249;"),
	"ucirc": []byte("&#251;"), "uuml": []byte("&#252;"),
	"ntilde": []byte("&#241;"), "ccedil": []byte("&#231;"),
	"times": []byte("&#215;"), "divide": []byte("&#247;"),
	"deg": []byte("&#176;"), "para": []byte("&#182;"), "sect": []byte("&#167;"),
	"laquo": []byte("&#171;"), "raquo": []byte("&#187;"),
	"iexcl": []byte("&#161;"), "iquest": []byte("&#191;"),
}

// htmlEntityPattern matches common HTML named entities case-insensitively.
var htmlEntityPattern = regexp.MustCompile(
	`(?i)&(nbsp|mdash|ndash|hellip|lsquo|rsquo|ldquo|rdquo|copy|reg|trade|bull|middot|` +
		`eacute|egrave|ecirc|euml|aacute|agrave|acirc|auml|iacute|igrave|icirc|iuml|` +
		`oacute|ograve|ocirc|ouml|uacute|ugrave|ucirc|uuml|ntilde|ccedil|` +
		`times|divide|deg|para|sect|laquo|raquo|iexcl|iquest);`)

// preprocessHTMLEntities replaces common HTML named entities with their
// numeric character references so that encoding/xml can parse the data.
// The matching is case-insensitive to handle non-standard ePub content.
func preprocessHTMLEntities(data []byte) []byte {
	return htmlEntityPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		// Extract entity name between & and ;, lowercase for lookup.
		name := strings.ToLower(string(match[1 : len(match)-1]))
		if replacement, ok := entityNameToNumeric[name]; ok {
			return replacement
		}
		return match
	})
}

// skipTags is the set of tags whose content never renders as text.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

var selfClosingSkipTagPattern = regexp.MustCompile(`(?is)<(script|style)\b([^>]*)/>`)

// normalizeSelfClosingSkipTags expands XHTML "<script/>" into an explicit
// start and end tag. The HTML tokenizer would otherwise treat everything up
// to the next "</script>" as script text.
func normalizeSelfClosingSkipTags(htmlData []byte) []byte {
	if !selfClosingSkipTagPattern.Match(htmlData) {
		return htmlData
	}
	return selfClosingSkipTagPattern.ReplaceAll(htmlData, []byte(`<$1$2></$1>`))
}

// visitText tokenizes a content document and calls fn for every run of
// character data outside <script> and <style>. Character references are
// already decoded when fn sees the text. Tokenizer errors end the walk
// silently: whatever was visited so far stands.
func visitText(htmlData []byte, fn func(text []byte)) {
	if decoded, err := toUTF8(htmlData); err == nil {
		htmlData = decoded
	} else {
		tracer().Infof("%v; reading content as UTF-8", err)
	}
	htmlData = normalizeSelfClosingSkipTags(htmlData)
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))

	skipDepth := 0 // depth inside a skip tag
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				tracer().Debugf("tokenizer stopped early: %v", err)
			}
			return

		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if skipTags[atom.Lookup(tn)] {
				skipDepth++
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if skipTags[atom.Lookup(tn)] && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			fn(tokenizer.Text())
		}
	}
}

// ExtractCharacters returns the distinct characters of the rendered text of
// a content document. Markup, attribute values and the bodies of <script>
// and <style> never contribute. Whitespace is dropped, as is U+FFFD from
// undecodable input.
func ExtractCharacters(htmlData []byte) CharSet {
	set := make(CharSet)
	visitText(htmlData, func(text []byte) {
		for len(text) > 0 {
			r, size := utf8.DecodeRune(text)
			text = text[size:]
			if isCountable(r) {
				set.Add(r)
			}
		}
	})
	return set
}

// CountCharacters returns the number of characters of the rendered text of a
// content document once all whitespace has been removed. "AB AB" counts 4.
func CountCharacters(htmlData []byte) int {
	n := 0
	visitText(htmlData, func(text []byte) {
		for len(text) > 0 {
			r, size := utf8.DecodeRune(text)
			text = text[size:]
			if isCountable(r) {
				n++
			}
		}
	})
	return n
}

func isCountable(r rune) bool {
	return r != utf8.RuneError && !unicode.IsSpace(r)
}

// hrefWithoutFragment strips a "#fragment" suffix from an href.
func hrefWithoutFragment(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i]
	}
	return href
}
