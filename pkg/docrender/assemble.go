package docrender

import (
	"context"
	"html"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/markup"
)

// Result is a rendered document.
type Result struct {
	HTML      string   `json:"html"`
	PageCount int      `json:"pageCount"`
	Geometry  Geometry `json:"geometry"`
}

// fragmentJob is one of header, body or footer on its way through the
// per-fragment pipeline.
type fragmentJob struct {
	name string
	text string
	out  string
}

// render runs the full pipeline for tpl. Fragments are processed in
// parallel; the first fatal error cancels the others.
func (e *Engine) render(ctx context.Context, tpl *Template, vars map[string]any, log *Logger) (*Result, error) {
	flat := Flatten(vars)
	fixed := FixedReplacements(e.now(), e.config.DateFormat)

	body, err := tpl.bodyText(e.markdown.Convert)
	if err != nil {
		return nil, &RenderError{Fragment: FragmentBody, Cause: err}
	}

	jobs := []*fragmentJob{{name: FragmentBody, text: body}}
	header := &fragmentJob{name: FragmentHeader}
	if tpl.IsHeaderEnabled() {
		header.text = tpl.HeaderText()
		if strings.TrimSpace(header.text) == "" {
			header.text = DefaultHeader(flat)
		}
		jobs = append(jobs, header)
	}
	footer := &fragmentJob{name: FragmentFooter}
	if tpl.IsFooterEnabled() {
		footer.text = tpl.FooterText()
		jobs = append(jobs, footer)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &RenderError{Fragment: job.name, Cause: RecoverError(r)}
				}
			}()
			job.out, err = e.renderFragment(gctx, job.name, job.text, flat, fixed, log)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if tpl.IsFooterEnabled() {
		footer.out = LegalFooter(flat)
	}

	geometry := ComputeGeometry(tpl)
	return &Result{
		HTML:      e.assemble(tpl, geometry, header.out, jobs[0].out, footer.out),
		PageCount: e.pageCount(jobs[0].out),
		Geometry:  geometry,
	}, nil
}

// renderFragment is the per-fragment pipeline: logo normalization, control
// blocks and interpolation, logo inlining, then code images.
func (e *Engine) renderFragment(ctx context.Context, name, text string, flat FlatMap, fixed map[string]string, log *Logger) (out string, err error) {
	start := time.Now()
	defer func() {
		e.observer.FragmentRendered(name, time.Since(start), err)
	}()
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	log = log.WithField("fragment", name)

	text = NormalizeLogos(text, flat)

	nodes, issues := e.cache.Parse(text)
	if len(issues) > 0 && log.IsDebugMode() {
		for _, issue := range issues {
			log.WithFields(Fields{"offset": issue.Pos, "marker": issue.Raw}).Debug("%s, kept as text", issue.Message)
		}
	}

	st := &renderState{
		flat:       flat,
		fixed:      fixed,
		policy:     e.config.UnresolvedPlaceholderPolicy,
		dateLayout: e.config.DateFormat,
		fragment:   name,
		logger:     log,
	}
	var b strings.Builder
	if err := renderNodes(nodes, st, nil, &b); err != nil {
		return "", &RenderError{Fragment: name, Cause: err}
	}

	logos := &logoResolver{
		fetcher:  e.fetcher,
		inline:   e.config.InlineLogos,
		logger:   log,
		observer: e.observer,
	}
	out = logos.Resolve(ctx, b.String(), flat)

	codes := &codeImageExpander{provider: e.codes, dateLayout: e.config.DateFormat, logger: log}
	return codes.Expand(out, flat), nil
}

// pageCount estimates pages from the text length of the body.
func (e *Engine) pageCount(body string) int {
	n := utf8.RuneCountInString(markup.TextContent(body))
	pages := int(math.Ceil(float64(n) / float64(e.config.CharsPerPage)))
	if pages < 1 {
		return 1
	}
	return pages
}

func (e *Engine) assemble(tpl *Template, g Geometry, header, body, footer string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"fr\">\n<head>\n<meta charset=\"utf-8\">\n")
	if tpl.Name != "" {
		b.WriteString("<title>" + html.EscapeString(tpl.Name) + "</title>\n")
	}
	b.WriteString("<style>\n" + g.CSS(tpl) + "</style>\n")
	if e.config.PagedJSURL != "" {
		b.WriteString(`<script src="` + html.EscapeString(e.config.PagedJSURL) + `"></script>` + "\n")
	}
	b.WriteString("</head>\n<body>\n")
	if g.HeaderEnabled {
		b.WriteString(`<header class="pdf-header">` + header + "</header>\n")
	}
	if g.FooterEnabled {
		b.WriteString(`<footer class="pdf-footer">` + footer + "</footer>\n")
	}
	b.WriteString(`<main class="pdf-content">` + body + "</main>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
