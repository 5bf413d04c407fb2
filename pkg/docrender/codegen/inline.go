package codegen

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/qr"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/fetch"
)

const barcodeHeight = 80

// InlineProvider renders symbols locally as PNG data URIs.
type InlineProvider struct{}

func NewInlineProvider() *InlineProvider {
	return &InlineProvider{}
}

func (p *InlineProvider) QR(payload string, size int) (string, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	size = min(size, MaxQRSize)
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	if b := code.Bounds(); size < b.Dx() {
		size = b.Dx()
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return "", fmt.Errorf("qr scale: %w", err)
	}
	return encodePNG(scaled)
}

func (p *InlineProvider) Barcode(payload, kind string) (string, error) {
	if kind == "" {
		kind = DefaultBarcodeType
	}
	var (
		code barcode.Barcode
		err  error
	)
	switch normalizeKind(kind) {
	case "code128":
		code, err = code128.Encode(payload)
	case "code39":
		code, err = code39.Encode(payload, false, true)
	case "ean13", "ean8", "ean":
		code, err = ean.Encode(payload)
	case "qrcode":
		return p.QR(payload, DefaultQRSize)
	default:
		return "", fmt.Errorf("unsupported barcode type %q", kind)
	}
	if err != nil {
		return "", fmt.Errorf("%s encode: %w", kind, err)
	}
	scaled, err := barcode.Scale(code, code.Bounds().Dx()*2, barcodeHeight)
	if err != nil {
		return "", fmt.Errorf("%s scale: %w", kind, err)
	}
	return encodePNG(scaled)
}

// SupportedBarcodeType reports whether the inline provider can draw kind.
func SupportedBarcodeType(kind string) bool {
	switch normalizeKind(kind) {
	case "", "code128", "code39", "ean13", "ean8", "ean", "qrcode":
		return true
	}
	return false
}

func normalizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(kind)
}

func encodePNG(code barcode.Barcode) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return "", fmt.Errorf("png encode: %w", err)
	}
	return fetch.Image{MIMEType: "image/png", Data: buf.Bytes()}.DataURI(), nil
}
