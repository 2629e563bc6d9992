package render

import (
	"bytes"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// QRPNG returns PNG bytes of a QR code for the given text, typically a
// rendered card's source link. The result is decoded once to validate it.
func QRPNG(text string, size int) ([]byte, error) {
	if size <= 0 {
		size = 400
	}
	pngBytes, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	if _, err := png.Decode(bytes.NewReader(pngBytes)); err != nil {
		return nil, err
	}
	return pngBytes, nil
}
