package fontsubset

import (
	"bytes"
	"fmt"

	tdfont "github.com/tdewolff/font"
)

// toSFNT unwraps WOFF and WOFF2 fonts. TrueType and OpenType data is
// returned as is. The second result is the media type of the input.
func toSFNT(data []byte) ([]byte, string, error) {
	mediaType, err := tdfont.MediaType(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFont, err)
	}
	if bytes.HasPrefix(data, []byte("ttcf")) {
		return nil, mediaType, fmt.Errorf("%w: font collection", ErrUnsupportedFont)
	}
	sfnt, err := tdfont.ToSFNT(data)
	if err != nil {
		return nil, mediaType, fmt.Errorf("%w: %v", ErrUnsupportedFont, err)
	}
	if mediaType != "font/truetype" && mediaType != "font/opentype" {
		tracer().Debugf("unpacked %s font, %d → %d bytes", mediaType, len(data), len(sfnt))
	}
	return sfnt, mediaType, nil
}
