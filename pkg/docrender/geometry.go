package docrender

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reference page used for pixel geometry, A4 at 96 DPI.
const (
	PageWidthPx  = 794
	PageHeightPx = 1123

	// MMToPx converts millimetres to CSS pixels.
	MMToPx = 3.78

	// sectionGapPx separates the header and footer from the content area.
	sectionGapPx = 5
)

// Geometry holds the pixel layout of a template's pages. ContentTopPx applies
// to the first page, the only page carrying the header.
type Geometry struct {
	MarginTopPx     float64 `json:"marginTopPx"`
	MarginBottomPx  float64 `json:"marginBottomPx"`
	MarginLeftPx    float64 `json:"marginLeftPx"`
	MarginRightPx   float64 `json:"marginRightPx"`
	HeaderHeightPx  float64 `json:"headerHeightPx"`
	FooterHeightPx  float64 `json:"footerHeightPx"`
	ContentTopPx    float64 `json:"contentTopPx"`
	ContentBottomPx float64 `json:"contentBottomPx"`
	ContentHeightPx float64 `json:"contentHeightPx"`

	HeaderEnabled bool `json:"headerEnabled"`
	FooterEnabled bool `json:"footerEnabled"`
}

func mmToPx(mm float64) float64 {
	return roundPx(mm * MMToPx)
}

func roundPx(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeGeometry derives the page geometry from the template's margins and
// section heights. ContentHeightPx is not clamped and goes negative when the
// header and footer outgrow the page.
func ComputeGeometry(tpl *Template) Geometry {
	m := tpl.EffectiveMargins()
	g := Geometry{
		MarginTopPx:    mmToPx(m.Top),
		MarginBottomPx: mmToPx(m.Bottom),
		MarginLeftPx:   mmToPx(m.Left),
		MarginRightPx:  mmToPx(m.Right),
		HeaderHeightPx: mmToPx(tpl.HeaderHeight()),
		FooterHeightPx: mmToPx(tpl.FooterHeight()),
		HeaderEnabled:  tpl.IsHeaderEnabled(),
		FooterEnabled:  tpl.IsFooterEnabled(),
	}

	g.ContentTopPx = g.MarginTopPx
	if g.HeaderEnabled {
		g.ContentTopPx = roundPx(g.MarginTopPx + g.HeaderHeightPx + sectionGapPx)
	}
	g.ContentBottomPx = g.MarginBottomPx
	if g.FooterEnabled {
		g.ContentBottomPx = roundPx(g.MarginBottomPx + g.FooterHeightPx + sectionGapPx)
	}
	g.ContentHeightPx = roundPx(PageHeightPx - g.ContentTopPx - g.ContentBottomPx)
	return g
}

// pageDimensions in millimetres, portrait.
var pageDimensions = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

func pageSize(tpl *Template) (name string, widthMM float64, landscape bool) {
	name = strings.ToUpper(tpl.EffectivePageSize())
	dims, ok := pageDimensions[name]
	if !ok {
		name, dims = DefaultPageSize, pageDimensions[DefaultPageSize]
	}
	landscape = strings.EqualFold(strings.TrimSpace(tpl.Orientation), "landscape")
	if landscape {
		return name, dims[1], true
	}
	return name, dims[0], false
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// CSS returns the print stylesheet for g. The header is placed on the first
// page only, the footer on every page.
func (g Geometry) CSS(tpl *Template) string {
	name, widthMM, landscape := pageSize(tpl)
	orientation := "portrait"
	if landscape {
		orientation = "landscape"
	}
	if name == "LETTER" {
		name = "letter"
	} else if name == "LEGAL" {
		name = "legal"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@page {\n  size: %s %s;\n  margin: %s %s %s %s;\n", name, orientation,
		px(g.MarginTopPx), px(g.MarginRightPx), px(g.ContentBottomPx), px(g.MarginLeftPx))
	if g.FooterEnabled {
		b.WriteString("  @bottom-center { content: element(footerEnv); }\n")
	}
	b.WriteString("}\n")

	fmt.Fprintf(&b, "@page:first {\n  margin-top: %s;\n", px(g.ContentTopPx))
	if g.HeaderEnabled {
		b.WriteString("  @top-center { content: element(headerEnv); }\n")
	}
	if g.FooterEnabled {
		b.WriteString("  @bottom-center { content: element(footerEnv); }\n")
	}
	b.WriteString("}\n")

	fmt.Fprintf(&b, ".pdf-header {\n  position: running(headerEnv);\n  height: %s;\n  overflow: hidden;\n}\n", px(g.HeaderHeightPx))
	fmt.Fprintf(&b, ".pdf-footer {\n  position: running(footerEnv);\n  height: %s;\n  overflow: hidden;\n}\n", px(g.FooterHeightPx))
	b.WriteString(".page-number::after { content: counter(page); }\n")
	b.WriteString(".total-pages::after { content: counter(pages); }\n")
	fmt.Fprintf(&b, "body {\n  margin: 0;\n  font-size: %spt;\n}\n", strconv.FormatFloat(tpl.EffectiveFontSize(), 'f', -1, 64))
	fmt.Fprintf(&b, ".pdf-content {\n  min-height: %s;\n}\n", px(g.ContentHeightPx))
	fmt.Fprintf(&b, "@media screen {\n  body {\n    width: %smm;\n    margin: 0 auto;\n  }\n}\n", strconv.FormatFloat(widthMM, 'f', -1, 64))
	return b.String()
}
