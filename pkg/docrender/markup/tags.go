package markup

import (
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Tag is a start tag located in a fragment.
type Tag struct {
	Name        string
	Attrs       []xhtml.Attribute
	Start       int
	End         int
	SelfClosing bool
}

// FindTags returns every start tag named name (case-insensitive) in src, in
// document order. Start and End are byte offsets into src.
func FindTags(src, name string) []Tag {
	name = strings.ToLower(name)
	var tags []Tag

	z := xhtml.NewTokenizer(strings.NewReader(src))
	offset := 0
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			if z.Err() != io.EOF {
				return tags
			}
			break
		}
		// Raw must be measured before Token, which may reuse the buffer.
		size := len(z.Raw())
		if tt == xhtml.StartTagToken || tt == xhtml.SelfClosingTagToken {
			tok := z.Token()
			if tok.Data == name {
				tags = append(tags, Tag{
					Name:        tok.Data,
					Attrs:       tok.Attr,
					Start:       offset,
					End:         offset + size,
					SelfClosing: tt == xhtml.SelfClosingTagToken,
				})
			}
		}
		offset += size
	}
	return tags
}

// Get returns the value of attribute key.
func (t *Tag) Get(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, a := range t.Attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Set replaces the value of attribute key, appending it when absent.
func (t *Tag) Set(key, val string) {
	key = strings.ToLower(key)
	for i, a := range t.Attrs {
		if a.Namespace == "" && a.Key == key {
			t.Attrs[i].Val = val
			return
		}
	}
	t.Attrs = append(t.Attrs, xhtml.Attribute{Key: key, Val: val})
}

// HasClass reports whether the class attribute lists class.
func (t *Tag) HasClass(class string) bool {
	v, ok := t.Get("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// String renders the tag back to HTML with escaped attribute values.
func (t *Tag) String() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(t.Name)
	for _, a := range t.Attrs {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	if t.SelfClosing {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
	return b.String()
}

// ReplaceTags substitutes each tag's span in src with rewrite(tag). Tags must
// come from FindTags on the same src. Returning the tag's original text leaves
// it unchanged.
func ReplaceTags(src string, tags []Tag, rewrite func(Tag) string) string {
	if len(tags) == 0 {
		return src
	}
	out := src
	for i := len(tags) - 1; i >= 0; i-- {
		tag := tags[i]
		out = out[:tag.Start] + rewrite(tag) + out[tag.End:]
	}
	return out
}

// TextContent returns the concatenated text nodes of src, skipping the bodies
// of script and style elements.
func TextContent(src string) string {
	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(src))
	skip := 0
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.StartTagToken:
			name, _ := z.TagName()
			if n := string(name); n == "script" || n == "style" {
				skip++
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if n := string(name); (n == "script" || n == "style") && skip > 0 {
				skip--
			}
		case xhtml.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}
