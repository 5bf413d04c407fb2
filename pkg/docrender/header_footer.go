package docrender

import (
	"html"
	"strings"

	"github.com/ecodeclub/ekit/slice"
)

// Organization fields read by the synthesized header and footer. Each ecole_*
// key falls back to its organization_* counterpart.
var orgFieldFallbacks = map[string]string{
	"ecole_nom":                "organization_name",
	"ecole_adresse":            "organization_address",
	"ecole_code_postal":        "organization_postal_code",
	"ecole_ville":              "organization_city",
	"ecole_email":              "organization_email",
	"ecole_telephone":          "organization_phone",
	"ecole_siret":              "organization_siret",
	"ecole_numero_declaration": "organization_numero_declaration",
}

// orgField returns the escaped organization value for key. Braces are
// encoded so the value is never read back as a placeholder.
func orgField(flat FlatMap, key string) string {
	v := logoValue(flat, key)
	if v == "" {
		if alt, ok := orgFieldFallbacks[key]; ok {
			v = logoValue(flat, alt)
		}
	}
	return escapeLiteral(v)
}

func escapeLiteral(s string) string {
	s = html.EscapeString(s)
	return strings.NewReplacer("{", "&#123;", "}", "&#125;").Replace(s)
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(slice.FilterMap(parts, func(_ int, s string) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	}), sep)
}

// DefaultHeader builds the header used when a template has none. The logo is
// emitted as a placeholder so it goes through logo resolution like authored
// content.
func DefaultHeader(flat FlatMap) string {
	var b strings.Builder
	b.WriteString(`<div class="pdf-default-header">`)
	for _, key := range LogoKeys {
		if logoValue(flat, key) != "" {
			b.WriteString(`<div class="pdf-header-logo">{` + key + `}</div>`)
			break
		}
	}

	b.WriteString(`<div class="pdf-header-info">`)
	if name := orgField(flat, "ecole_nom"); name != "" {
		b.WriteString(`<div class="pdf-header-name">` + name + `</div>`)
	}
	city := joinNonEmpty(" ", orgField(flat, "ecole_code_postal"), orgField(flat, "ecole_ville"))
	if addr := joinNonEmpty(", ", orgField(flat, "ecole_adresse"), city); addr != "" {
		b.WriteString(`<div class="pdf-header-address">` + addr + `</div>`)
	}
	if contact := joinNonEmpty(" | ", orgField(flat, "ecole_email"), orgField(flat, "ecole_telephone")); contact != "" {
		b.WriteString(`<div class="pdf-header-contact">` + contact + `</div>`)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

// LegalFooter builds the legal notice that replaces any rendered footer.
func LegalFooter(flat FlatMap) string {
	var b strings.Builder
	b.WriteString(`<div class="pdf-legal-footer">`)

	city := joinNonEmpty(" ", orgField(flat, "ecole_code_postal"), orgField(flat, "ecole_ville"))
	if line := joinNonEmpty(" - ", orgField(flat, "ecole_nom"), joinNonEmpty(", ", orgField(flat, "ecole_adresse"), city)); line != "" {
		b.WriteString(`<div class="pdf-footer-org">` + line + `</div>`)
	}

	var ids []string
	if siret := orgField(flat, "ecole_siret"); siret != "" {
		ids = append(ids, "SIRET : "+siret)
	}
	if decl := orgField(flat, "ecole_numero_declaration"); decl != "" {
		ids = append(ids, "Déclaration d&#39;activité : "+decl)
	}
	if len(ids) > 0 {
		b.WriteString(`<div class="pdf-footer-legal">` + strings.Join(ids, " - ") + `</div>`)
	}

	b.WriteString(`<div class="pdf-footer-pages">Page ` + pageNumberSpan + ` / ` + totalPagesSpan + `</div>`)
	b.WriteString(`</div>`)
	return b.String()
}
