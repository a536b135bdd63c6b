package images

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

var encodeFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
	"image/bmp":  imaging.BMP,
	"image/tiff": imaging.TIFF,
}

// CanEncode reports whether Convert can produce the given media type.
func CanEncode(mediaType string) bool {
	_, ok := encodeFormats[mediaType]
	return ok
}

// Convert re-encodes src as the given media type. Decoding accepts any
// of the registered image formats, including webp.
func Convert(src []byte, toMediaType string) ([]byte, error) {
	format, ok := encodeFormats[toMediaType]
	if !ok {
		return nil, errors.Errorf("unsupported target media type %s", toMediaType)
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var buf bytes.Buffer
	err = imaging.Encode(&buf, img, format, imaging.JPEGQuality(85))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}
