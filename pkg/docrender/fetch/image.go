package fetch

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Image is a fetched image ready to be embedded in a document.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI encodes the image as data:<mime>;base64,<bytes>.
func (i Image) DataURI() string {
	mimeType := i.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// IsDataURI reports whether s is already an inline data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:")
}

// ParseDataURI parses a base64 data URI and returns the image it carries.
func ParseDataURI(dataURI string) (Image, error) {
	if dataURI == "" {
		return Image{}, fmt.Errorf("empty data URI")
	}

	// Data URI format: data:[<mediatype>][;base64],<data>
	if !strings.HasPrefix(dataURI, "data:") {
		return Image{}, fmt.Errorf("invalid data URI format")
	}
	metadata, payload, ok := strings.Cut(dataURI[5:], ",")
	if !ok {
		return Image{}, fmt.Errorf("invalid data URI format")
	}
	if payload == "" {
		return Image{}, fmt.Errorf("no image data")
	}
	if !strings.HasSuffix(metadata, ";base64") {
		return Image{}, fmt.Errorf("missing base64 marker")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("invalid base64 data: %w", err)
	}
	return Image{
		MIMEType: strings.TrimSuffix(metadata, ";base64"),
		Data:     data,
	}, nil
}
