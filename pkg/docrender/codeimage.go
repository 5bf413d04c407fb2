package docrender

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/codegen"
	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/markup"
)

const (
	qrClass      = "qr-code-dynamic"
	barcodeClass = "barcode-dynamic"

	qrDataAttr      = "data-qr-data"
	barcodeDataAttr = "data-barcode-data"
	barcodeTypeAttr = "data-barcode-type"
)

var (
	payloadPlaceholderRegex = regexp.MustCompile(`\{(@?[\p{L}_][\p{L}\p{N}_\-]*(?:\.[\p{L}\p{N}_\-]+)*)\}`)
	pixelSizeRegex          = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*(?:px)?\s*$`)
)

// codeImageExpander points dynamic QR and barcode images at generated
// sources.
type codeImageExpander struct {
	provider   codegen.Provider
	dateLayout string
	logger     *Logger
}

// Expand sets src on every qr-code-dynamic and barcode-dynamic <img>. All
// other attributes are kept. A tag whose source cannot be produced is left
// unchanged.
func (e *codeImageExpander) Expand(fragment string, flat FlatMap) string {
	var targets []markup.Tag
	for _, t := range markup.FindTags(fragment, "img") {
		if t.HasClass(qrClass) || t.HasClass(barcodeClass) {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return fragment
	}

	return markup.ReplaceTags(fragment, targets, func(t markup.Tag) string {
		src, err := e.source(&t, flat)
		if err != nil {
			e.logger.WithError(err).Warn("code image left unexpanded")
			return fragment[t.Start:t.End]
		}
		t.Set("src", src)
		return t.String()
	})
}

func (e *codeImageExpander) source(t *markup.Tag, flat FlatMap) (string, error) {
	if t.HasClass(qrClass) {
		payload, _ := t.Get(qrDataAttr)
		return e.provider.QR(e.substitute(payload, flat), qrSize(t))
	}
	payload, _ := t.Get(barcodeDataAttr)
	kind, _ := t.Get(barcodeTypeAttr)
	if strings.TrimSpace(kind) == "" {
		kind = codegen.DefaultBarcodeType
	}
	return e.provider.Barcode(e.substitute(payload, flat), strings.TrimSpace(kind))
}

// substitute fills placeholders still present in a payload with raw values.
func (e *codeImageExpander) substitute(payload string, flat FlatMap) string {
	return payloadPlaceholderRegex.ReplaceAllStringFunc(payload, func(m string) string {
		v, ok := flat[m[1:len(m)-1]]
		if !ok {
			return ""
		}
		return formatValue(v, e.dateLayout)
	})
}

// qrSize reads the pixel max-width from the inline style, capped at
// codegen.MaxQRSize.
func qrSize(t *markup.Tag) int {
	style, _ := t.Get("style")
	width, ok := markup.StyleProperty(style, "max-width")
	if !ok {
		return codegen.DefaultQRSize
	}
	m := pixelSizeRegex.FindStringSubmatch(width)
	if m == nil {
		return codegen.DefaultQRSize
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil || size <= 0 {
		return codegen.DefaultQRSize
	}
	return int(min(size, codegen.MaxQRSize))
}
