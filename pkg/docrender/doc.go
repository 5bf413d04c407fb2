// Package docrender turns stored document templates into self-contained,
// print-paginated HTML documents.
//
// A template is an HTML body plus optional header and footer fragments
// containing placeholders. Each fragment is rendered independently against a
// flattened variable map; the results are assembled into one document with
// print CSS computed from the template's margins and section heights. The
// HTML is meant for a headless browser running the paged.js polyfill, which
// produces the final PDF.
//
// # Quick Start
//
//	engine := docrender.New()
//
//	tpl := &docrender.Template{
//	    ID:      "attestation",
//	    Content: docrender.Content{HTML: "<p>{student_name} enrolled in {course}</p>"},
//	}
//
//	result, err := engine.Render(ctx, tpl, map[string]any{
//	    "student_name": "Awa",
//	    "course":       "Web Dev",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("attestation.html", []byte(result.HTML), 0644)
//
// # Template Syntax
//
// Variables:
//
//	{name}                  - Value of name, HTML-escaped
//	{student.address.city}  - Nested field, keys joined by dots
//	{current_date}          - Today in Config.DateFormat (also {date_du_jour})
//	{current_year}          - The current year
//	{page_number}           - Page counter, filled by the pagination engine
//	{total_pages}           - Page total, filled by the pagination engine
//
// Conditionals:
//
//	{IF paid}...{ENDIF}
//	{IF !paid}...{ELSE}...{ENDIF}
//	{IF status == "active"}...{ENDIF}
//	{IF status != 'draft'}...{ENDIF}
//
// Repeating blocks, over an array or a JSON array string:
//
//	{{#table modules}}<tr><td>{row_number}</td><td>{title}</td></tr>{{/table}}
//	{{#each tags}}<li>{this}</li>{{/each}}
//
// Inside a block, {field} and {item.field} read the current row, {index} and
// {@index} give the 0-based position and, in table blocks, {row_number} the
// 1-based one. Row values are inserted without escaping.
//
// Placeholders with no value are removed by default; see
// Config.UnresolvedPlaceholderPolicy.
//
// # Logos
//
// The variables ecole_logo, organization_logo and organisation_logo hold logo
// URLs. A {ecole_logo} placeholder or a bare occurrence of the URL becomes an
// <img data-logo-var="{ecole_logo}"> tag whose image is downloaded and
// embedded as a data URI. When the download fails the URL is used as src;
// when the variable is empty the tag is hidden with display: none.
//
// # QR Codes and Barcodes
//
//	<img class="qr-code-dynamic" data-qr-data="{certificate_url}" style="max-width:120px">
//	<img class="barcode-dynamic" data-barcode-data="{student_id}" data-barcode-type="Code128">
//
// These tags get a src pointing at a QR or barcode image service, or an
// embedded PNG when Config.CodeImageMode is "inline".
//
// # Configuration
//
// Engine defaults come from the global Config, which reads DOCRENDER_*
// environment variables. See Config for the available settings.
package docrender
