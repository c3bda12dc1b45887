// Package render encodes payloads into barcode and QR raster images.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/ean"
	"github.com/skip2/go-qrcode"

	"codemint/internal/ids"
	"codemint/internal/models"
)

// ErrInvalidPayload marks payloads the target symbology cannot encode,
// e.g. a non-numeric or wrong-length EAN-13 payload.
var ErrInvalidPayload = errors.New("invalid payload for symbology")

const (
	barcodeWidth  = 300
	barcodeHeight = 150
)

// Image is the transient rendering result. It lives in memory, belongs
// to a single pipeline invocation and is consumed by the uploader.
type Image struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

// Renderer turns a payload string into an encoded raster image.
type Renderer interface {
	Render(kind models.CodeKind, payload string) (Image, error)
}

// PNGRenderer renders EAN-13 barcodes and QR codes as PNG.
type PNGRenderer struct {
	// QRSize is the side length in pixels of rendered QR codes.
	QRSize int
}

func NewPNGRenderer(qrSize int) *PNGRenderer {
	if qrSize <= 0 {
		qrSize = 256
	}
	return &PNGRenderer{QRSize: qrSize}
}

func (r *PNGRenderer) Render(kind models.CodeKind, payload string) (Image, error) {
	switch kind {
	case models.CodeKindBarcode:
		return r.renderBarcode(payload)
	case models.CodeKindQR:
		return r.renderQR(payload)
	default:
		return Image{}, fmt.Errorf("unknown code kind %q", kind)
	}
}

func (r *PNGRenderer) renderBarcode(payload string) (Image, error) {
	if err := validateEANPayload(payload); err != nil {
		return Image{}, err
	}

	code, err := ean.Encode(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	scaled, err := barcode.Scale(code, barcodeWidth, barcodeHeight)
	if err != nil {
		return Image{}, fmt.Errorf("scale barcode: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return Image{}, fmt.Errorf("encode png: %w", err)
	}

	return Image{
		Filename:    payload + ".png",
		ContentType: "image/png",
		Bytes:       buf.Bytes(),
	}, nil
}

func (r *PNGRenderer) renderQR(payload string) (Image, error) {
	if payload == "" {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	data, err := qrcode.Encode(payload, qrcode.Medium, r.QRSize)
	if err != nil {
		return Image{}, fmt.Errorf("encode qr: %w", err)
	}

	return Image{
		Filename:    payload + ".png",
		ContentType: "image/png",
		Bytes:       data,
	}, nil
}

func validateEANPayload(payload string) error {
	if len(payload) != ids.NumericWidth {
		return fmt.Errorf("%w: want %d digits, got %d", ErrInvalidPayload, ids.NumericWidth, len(payload))
	}
	for _, c := range payload {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: non-numeric character %q", ErrInvalidPayload, c)
		}
	}
	return nil
}
