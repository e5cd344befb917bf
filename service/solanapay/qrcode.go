package solanapay

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// qrImageSize is the rendered PNG size in pixels. 256px scans reliably for
// URLs of the lengths this service produces.
const qrImageSize = 256

// EncodeQR renders a payment URL as a QR code PNG and returns it as a
// data URI ("data:image/png;base64,..."), suitable for inline embedding in
// JSON responses or HTML img tags.
//
// Low error correction is used to maximize capacity; the library picks the
// smallest QR version that fits the input. Input that exceeds the format's
// absolute capacity fails with ErrPayloadTooLarge.
func EncodeQR(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Low, qrImageSize)
	if err != nil {
		if strings.Contains(err.Error(), "content too long") {
			return "", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(uri))
		}
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
