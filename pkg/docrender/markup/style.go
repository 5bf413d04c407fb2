package markup

import "strings"

// StyleProperty returns the value of prop in an inline style declaration list.
func StyleProperty(style, prop string) (string, bool) {
	prop = strings.ToLower(strings.TrimSpace(prop))
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.ToLower(strings.TrimSpace(k)) == prop {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// SetStyleProperty sets prop to val, replacing an existing declaration or
// appending a new one. Other declarations keep their order.
func SetStyleProperty(style, prop, val string) string {
	prop = strings.ToLower(strings.TrimSpace(prop))
	var decls []string
	found := false
	for _, decl := range strings.Split(style, ";") {
		if strings.TrimSpace(decl) == "" {
			continue
		}
		k, _, ok := strings.Cut(decl, ":")
		if ok && strings.ToLower(strings.TrimSpace(k)) == prop {
			if !found {
				decls = append(decls, prop+": "+val)
				found = true
			}
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if !found {
		decls = append(decls, prop+": "+val)
	}
	return strings.Join(decls, "; ") + ";"
}
