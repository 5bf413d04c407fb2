package docrender

import (
	"strings"

	"github.com/ecodeclub/ekit/slice"
)

const (
	DefaultMarginMM       = 15.0
	DefaultFontSizePt     = 10.0
	DefaultHeaderHeightMM = 30.0
	DefaultFooterHeightMM = 20.0
	DefaultPageSize       = "A4"
)

// Template is a stored document template as supplied by the data layer.
type Template struct {
	ID            string   `json:"id" yaml:"id"`
	Type          string   `json:"type" yaml:"type"`
	Name          string   `json:"name" yaml:"name"`
	Content       Content  `json:"content" yaml:"content"`
	Header        *Section `json:"header,omitempty" yaml:"header,omitempty"`
	Footer        *Section `json:"footer,omitempty" yaml:"footer,omitempty"`
	HeaderEnabled *bool    `json:"header_enabled,omitempty" yaml:"header_enabled,omitempty"`
	FooterEnabled *bool    `json:"footer_enabled,omitempty" yaml:"footer_enabled,omitempty"`
	Margins       *Margins `json:"margins,omitempty" yaml:"margins,omitempty"`
	FontSize      float64  `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	PageSize      string   `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Orientation   string   `json:"orientation,omitempty" yaml:"orientation,omitempty"`
}

// Content holds the body either as one HTML string or as editor elements.
type Content struct {
	HTML     string    `json:"html,omitempty" yaml:"html,omitempty"`
	Elements []Element `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// Element is one block of an editor-built body.
type Element struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Content string `json:"content" yaml:"content"`
	// Format is "html" (default) or "markdown".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Section is a header or footer definition. Height is in millimetres.
type Section struct {
	Content string  `json:"content" yaml:"content"`
	Height  float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// IsHeaderEnabled defaults to true.
func (t *Template) IsHeaderEnabled() bool {
	return t.HeaderEnabled == nil || *t.HeaderEnabled
}

// IsFooterEnabled defaults to true.
func (t *Template) IsFooterEnabled() bool {
	return t.FooterEnabled == nil || *t.FooterEnabled
}

// EffectiveMargins returns the configured margins or 15mm on every side.
func (t *Template) EffectiveMargins() Margins {
	if t.Margins == nil {
		return Margins{Top: DefaultMarginMM, Right: DefaultMarginMM, Bottom: DefaultMarginMM, Left: DefaultMarginMM}
	}
	return *t.Margins
}

func (t *Template) HeaderHeight() float64 {
	if t.Header == nil || t.Header.Height <= 0 {
		return DefaultHeaderHeightMM
	}
	return t.Header.Height
}

func (t *Template) FooterHeight() float64 {
	if t.Footer == nil || t.Footer.Height <= 0 {
		return DefaultFooterHeightMM
	}
	return t.Footer.Height
}

func (t *Template) EffectiveFontSize() float64 {
	if t.FontSize <= 0 {
		return DefaultFontSizePt
	}
	return t.FontSize
}

func (t *Template) EffectivePageSize() string {
	if strings.TrimSpace(t.PageSize) == "" {
		return DefaultPageSize
	}
	return strings.TrimSpace(t.PageSize)
}

// HeaderText is the custom header content, empty when none was authored.
func (t *Template) HeaderText() string {
	if t.Header == nil {
		return ""
	}
	return t.Header.Content
}

// FooterText is the custom footer content.
func (t *Template) FooterText() string {
	if t.Footer == nil {
		return ""
	}
	return t.Footer.Content
}

// bodyText returns content.html when set, else the non-empty elements joined
// by newlines. Markdown elements go through convert first.
func (t *Template) bodyText(convert func(string) (string, error)) (string, error) {
	if t.Content.HTML != "" {
		return t.Content.HTML, nil
	}
	var convErr error
	parts := slice.FilterMap(t.Content.Elements, func(idx int, el Element) (string, bool) {
		if convErr != nil || strings.TrimSpace(el.Content) == "" {
			return "", false
		}
		if strings.EqualFold(el.Format, "markdown") && convert != nil {
			html, err := convert(el.Content)
			if err != nil {
				convErr = err
				return "", false
			}
			return html, true
		}
		return el.Content, true
	})
	if convErr != nil {
		return "", convErr
	}
	return strings.Join(parts, "\n"), nil
}
