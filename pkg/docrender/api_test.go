package docrender

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/fetch"
	fetchmocks "github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/fetch/mocks"
)

func newTestEngine(opts ...Option) *Engine {
	base := []Option{
		WithConfig(DefaultConfig()),
		WithLogger(NewLogger(io.Discard, LogOff)),
		WithClock(func() time.Time { return testNow }),
	}
	return New(append(base, opts...)...)
}

func bodyTemplate(html string) *Template {
	return &Template{ID: "tpl-1", Name: "Attestation", Content: Content{HTML: html}}
}

func TestEngine_Render_Simple(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEngine(WithFetcher(fetchmocks.NewMockImageFetcher(ctrl)))

	result, err := e.Render(context.Background(), bodyTemplate("<p>{student_name} enrolled in {course}</p>"), map[string]any{
		"student_name": "Awa",
		"course":       "Web Dev",
	})
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "<p>Awa enrolled in Web Dev</p>")
	assert.Equal(t, 1, result.PageCount)
	assert.True(t, strings.HasPrefix(result.HTML, "<!DOCTYPE html>"))
	assert.Contains(t, result.HTML, `<script src="https://unpkg.com/pagedjs/dist/paged.polyfill.js"></script>`)
	assert.Contains(t, result.HTML, "<title>Attestation</title>")
	assert.Equal(t, 175.1, result.Geometry.ContentTopPx)
}

func TestEngine_Render_Each(t *testing.T) {
	e := newTestEngine()

	result, err := e.Render(context.Background(), bodyTemplate("<ul>{{#each items}}<li>{this}</li>{{/each}}</ul>"), map[string]any{
		"items": []any{"A", "B"},
	})
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "<ul><li>A</li><li>B</li></ul>")
	assert.Equal(t, 1, strings.Count(result.HTML, "<li>A</li>"))
}

func TestEngine_Render_Sections(t *testing.T) {
	vars := map[string]any{
		"ecole_nom":   "Centre Avenir",
		"ecole_siret": "12345678900012",
	}

	testCases := []struct {
		name     string
		tpl      *Template
		contains []string
		excludes []string
	}{
		{
			name:     "default header and legal footer",
			tpl:      bodyTemplate("<p>body</p>"),
			contains: []string{`<header class="pdf-header"><div class="pdf-default-header">`, "pdf-legal-footer", "SIRET : 12345678900012"},
		},
		{
			name: "custom header is rendered",
			tpl: &Template{
				Content: Content{HTML: "<p>body</p>"},
				Header:  &Section{Content: "<h1>{ecole_nom}</h1>"},
			},
			contains: []string{"<h1>Centre Avenir</h1>"},
			excludes: []string{"pdf-default-header"},
		},
		{
			name: "custom footer is replaced by the legal notice",
			tpl: &Template{
				Content: Content{HTML: "<p>body</p>"},
				Footer:  &Section{Content: "<p>CUSTOM FOOTER</p>"},
			},
			contains: []string{"pdf-legal-footer"},
			excludes: []string{"CUSTOM FOOTER"},
		},
		{
			name: "sections disabled",
			tpl: &Template{
				Content:       Content{HTML: "<p>body</p>"},
				HeaderEnabled: boolPtr(false),
				FooterEnabled: boolPtr(false),
			},
			contains: []string{`<main class="pdf-content"><p>body</p></main>`},
			excludes: []string{"<header", "<footer", "@top-center", "@bottom-center"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := newTestEngine().Render(context.Background(), tc.tpl, vars)
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, result.HTML, s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, result.HTML, s)
			}
		})
	}
}

func TestEngine_Render_LogoInlined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	}))
	defer srv.Close()

	logoURL := srv.URL + "/abc.supabase.co/logo.png"
	obs := newRecordingObserver()
	e := newTestEngine(WithObserver(obs))

	result, err := e.Render(context.Background(), bodyTemplate("<p>Logo: "+logoURL+"</p>"), map[string]any{
		"ecole_nom":  "Centre Avenir",
		"ecole_logo": logoURL,
	})
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "data:image/png;base64,")
	assert.NotContains(t, result.HTML, logoURL)
	assert.Equal(t, []string{LogoInlined, LogoInlined}, obs.logos["ecole_logo"])
}

func TestEngine_Render_LogoFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := fetchmocks.NewMockImageFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "https://cdn.test/logo.png").
		Return(fetch.Image{}, &fetch.StatusError{StatusCode: http.StatusNotFound})

	obs := newRecordingObserver()
	e := newTestEngine(WithFetcher(fetcher), WithObserver(obs))

	tpl := bodyTemplate("<p>{ecole_logo}</p>")
	tpl.HeaderEnabled = boolPtr(false)
	result, err := e.Render(context.Background(), tpl, map[string]any{"ecole_logo": "https://cdn.test/logo.png"})
	require.NoError(t, err)
	assert.Contains(t, result.HTML, `src="https://cdn.test/logo.png"`)
	assert.Equal(t, []string{LogoFallback}, obs.logos["ecole_logo"])
	require.Len(t, obs.completed, 1)
	assert.NoError(t, obs.completed[0])
}

func TestEngine_Render_Errors(t *testing.T) {
	e := newTestEngine()
	_, err := e.Render(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, ErrNilTemplate))

	config := DefaultConfig()
	config.UnresolvedPlaceholderPolicy = UnresolvedError
	obs := newRecordingObserver()
	e = newTestEngine(WithConfig(config), WithObserver(obs))

	result, err := e.Render(context.Background(), bodyTemplate("<p>{missing}</p>"), map[string]any{"secret": "value"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsUnresolvedPlaceholder(err))

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "tpl-1", re.TemplateID)
	assert.Equal(t, FragmentBody, re.Fragment)

	require.Len(t, obs.completed, 1)
	assert.Error(t, obs.completed[0])
	assert.Error(t, obs.fragments[FragmentBody])
}

func TestEngine_Render_PageCount(t *testing.T) {
	body := "<p>" + strings.Repeat("a", 7000) + "</p>"
	result, err := newTestEngine().Render(context.Background(), bodyTemplate(body), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.PageCount)
}

func TestEngine_Render_Elements(t *testing.T) {
	tpl := &Template{
		ID: "elements",
		Content: Content{Elements: []Element{
			{Content: "<p>{a}</p>"},
			{Content: "   "},
			{Content: "## Title {b}", Format: "markdown"},
		}},
	}
	result, err := newTestEngine().Render(context.Background(), tpl, map[string]any{"a": "one", "b": "two"})
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "<p>one</p>\n<h2>Title two</h2>")
}

func TestEngine_Render_Concurrent(t *testing.T) {
	e := newTestEngine()
	tpl := bodyTemplate("<p>{name}</p>")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := strings.Repeat("x", i+1)
			result, err := e.Render(context.Background(), tpl, map[string]any{"name": name})
			if assert.NoError(t, err) {
				assert.Contains(t, result.HTML, "<p>"+name+"</p>")
			}
		}(i)
	}
	wg.Wait()
}

func TestEngine_RenderFragment(t *testing.T) {
	out, err := newTestEngine().RenderFragment(context.Background(), "Hello {name}, {current_date}", map[string]any{"name": "Awa"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Awa, 05/03/2024", out)
}

func TestPackageRender(t *testing.T) {
	result, err := Render(context.Background(), bodyTemplate("<p>{x}</p>"), map[string]any{"x": "y"})
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "<p>y</p>")
	assert.Same(t, DefaultEngine(), DefaultEngine())
}

func TestEngine_PayloadPreview(t *testing.T) {
	config := DefaultConfig()
	config.MaxPayloadLogBytes = 10
	e := newTestEngine(WithConfig(config))
	assert.Equal(t, `{"name":"A...`, e.payloadPreview(map[string]any{"name": "Awa Diop"}))
}
