package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// PNGSize is the edge length of generated images in pixels
const PNGSize = 256

// PNG encodes url as a QR code image
func PNG(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, PNGSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

// Terminal renders url as a QR code made of block characters
func Terminal(url string) (string, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return q.ToSmallString(false), nil
}
