package imageproc

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedMediaType is wrapped by errors for inputs outside the accepted set.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// Accepted lists the media types the service classifies.
var Accepted = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}

func isAccepted(mt string) bool {
	for _, a := range Accepted {
		if a == mt {
			return true
		}
	}
	return false
}

// aliases maps non-canonical declared types to the canonical accepted ones.
var aliases = map[string]string{
	"image/jpg":      "image/jpeg",
	"image/pjpeg":    "image/jpeg",
	"image/x-png":    "image/png",
	"image/x-ms-bmp": "image/bmp",
	"image/x-bmp":    "image/bmp",
}

// NormalizeDeclared parses a Content-Type header value and returns the bare,
// lowercased media type ("" when absent or generic).
func NormalizeDeclared(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	}
	if canon, ok := aliases[mt]; ok {
		mt = canon
	}
	if mt == "application/octet-stream" {
		return ""
	}
	return mt
}

// CheckDeclared fails fast when the client declared a type outside the accepted set.
func CheckDeclared(ct string) error {
	mt := NormalizeDeclared(ct)
	if mt == "" || isAccepted(mt) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
}

// Sniff inspects the leading bytes of r and returns the media type to decode
// as. r is rewound before returning. Rules:
//   - a declared type outside the accepted set is rejected;
//   - detected accepted types win over the declared one;
//   - a detected non-image type (text, pdf, zip, ...) is rejected;
//   - unrecognized bytes are passed through only when the client declared an
//     accepted type, so corrupt images surface as decode errors.
func Sniff(r io.ReadSeeker, declared string) (string, error) {
	if err := CheckDeclared(declared); err != nil {
		return "", err
	}
	dt, err := mimetype.DetectReader(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return "", fmt.Errorf("rewind: %w", serr)
	}
	if err != nil {
		return "", fmt.Errorf("detect media type: %w", err)
	}
	detected := NormalizeDeclared(dt.String())
	if canon, ok := aliases[detected]; ok {
		detected = canon
	}
	switch {
	case isAccepted(detected):
		return detected, nil
	case detected != "":
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, detected)
	}
	if d := NormalizeDeclared(declared); d != "" {
		return d, nil
	}
	return "", fmt.Errorf("%w: unrecognized content", ErrUnsupportedMediaType)
}
