package docrender

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/fetch"
	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/markup"
)

// LogoKeys are the variables that may hold a logo URL, in resolution order.
var LogoKeys = []string{"ecole_logo", "organization_logo", "organisation_logo"}

const (
	logoAttr     = "data-logo-var"
	logoLookback = 150
)

var (
	// An attribute value opened before the match and not yet closed.
	openAttrRegex = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_\-:]*\s*=\s*["'][^"']*$`)
	// An open src= or href= whose value runs up to the match.
	openURLAttrRegex = regexp.MustCompile(`(?i)\b(?:src|href)\s*=\s*["']?[^"'\s>]*$`)
	// An <img start tag not yet closed.
	openImgRegex = regexp.MustCompile(`(?i)<img\b[^>]*$`)
)

// LogoTag is the canonical markup every logo representation is rewritten to.
func LogoTag(key string) string {
	return fmt.Sprintf(`<img alt="Logo" style="max-height:55px;max-width:140px;object-fit:contain;" %s="{%s}" />`, logoAttr, key)
}

func lookback(s string, pos int) string {
	start := pos - logoLookback
	if start < 0 {
		start = 0
	}
	return s[start:pos]
}

func logoValue(flat FlatMap, key string) string {
	v, ok := flat[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(formatValue(v, ""))
}

// NormalizeLogos rewrites {K} placeholders and bare occurrences of each logo
// URL into the canonical logo tag. Placeholders inside an attribute value and
// URLs already used by src, href or an <img> tag are left alone.
func NormalizeLogos(fragment string, flat FlatMap) string {
	for _, key := range LogoKeys {
		value := logoValue(flat, key)
		if value == "" {
			continue
		}
		tag := LogoTag(key)
		fragment = replacePlaceholder(fragment, "{"+key+"}", tag)
		if !fetch.IsDataURI(value) {
			fragment = replaceBareURL(fragment, value, tag)
		}
	}
	return fragment
}

func replacePlaceholder(s, placeholder, tag string) string {
	var b strings.Builder
	last := 0
	for {
		i := strings.Index(s[last:], placeholder)
		if i < 0 {
			break
		}
		pos := last + i
		b.WriteString(s[last:pos])
		if openAttrRegex.MatchString(lookback(s, pos)) {
			b.WriteString(placeholder)
		} else {
			b.WriteString(tag)
		}
		last = pos + len(placeholder)
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// replaceBareURL replaces text occurrences of url, working back to front so
// earlier offsets stay valid.
func replaceBareURL(s, url, tag string) string {
	var positions []int
	for from := 0; ; {
		i := strings.Index(s[from:], url)
		if i < 0 {
			break
		}
		positions = append(positions, from+i)
		from += i + len(url)
	}

	for j := len(positions) - 1; j >= 0; j-- {
		pos := positions[j]
		before := lookback(s, pos)
		if openURLAttrRegex.MatchString(before) || openImgRegex.MatchString(before) || openAttrRegex.MatchString(before) {
			continue
		}
		s = s[:pos] + tag + s[pos+len(url):]
	}
	return s
}

// logoResolver sets the src of canonical logo tags, inlining the image as a
// data URI when it can be fetched.
type logoResolver struct {
	fetcher  fetch.ImageFetcher
	inline   bool
	logger   *Logger
	observer Observer
}

func logoKey(tag *markup.Tag) (string, bool) {
	v, ok := tag.Get(logoAttr)
	if !ok {
		return "", false
	}
	return strings.Trim(strings.TrimSpace(v), "{}"), true
}

// Resolve rewrites every tag carrying data-logo-var. A URL is fetched at most
// once per fragment. Failures leave the URL in src.
func (r *logoResolver) Resolve(ctx context.Context, fragment string, flat FlatMap) string {
	tags := markup.FindTags(fragment, "img")
	var logos []markup.Tag
	for _, t := range tags {
		if _, ok := logoKey(&t); ok {
			logos = append(logos, t)
		}
	}
	if len(logos) == 0 {
		return fragment
	}

	sources := make(map[string]string)
	return markup.ReplaceTags(fragment, logos, func(t markup.Tag) string {
		key, _ := logoKey(&t)
		value := logoValue(flat, key)
		if value == "" {
			style, _ := t.Get("style")
			t.Set("style", markup.SetStyleProperty(style, "display", "none"))
			r.observer.LogoFetched(key, LogoHidden)
			return t.String()
		}

		src, ok := sources[value]
		if !ok {
			src = r.source(ctx, key, value)
			sources[value] = src
		}
		t.Set("src", src)
		return t.String()
	})
}

func (r *logoResolver) source(ctx context.Context, key, url string) string {
	if fetch.IsDataURI(url) || !r.inline || r.fetcher == nil {
		return url
	}

	img, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		ferr := &FetchError{Key: key, URL: url, Cause: err}
		r.logger.WithField("logo_key", key).WithError(ferr).Warn("logo fetch failed, keeping original URL")
		r.observer.LogoFetched(key, LogoFallback)
		return url
	}
	r.observer.LogoFetched(key, LogoInlined)
	return img.DataURI()
}
