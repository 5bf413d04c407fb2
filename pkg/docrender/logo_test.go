package docrender

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/fetch"
	fetchmocks "github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/fetch/mocks"
)

const testLogoURL = "https://abc.supabase.co/storage/v1/object/public/logos/ecole.png"

func TestNormalizeLogos(t *testing.T) {
	tag := LogoTag("ecole_logo")
	testCases := []struct {
		name  string
		input string
		vars  map[string]any
		want  string
	}{
		{
			name:  "placeholder",
			input: "<div>{ecole_logo}</div>",
			vars:  map[string]any{"ecole_logo": testLogoURL},
			want:  "<div>" + tag + "</div>",
		},
		{
			name:  "no value leaves placeholder",
			input: "<div>{ecole_logo}</div>",
			vars:  map[string]any{"ecole_logo": "  "},
			want:  "<div>{ecole_logo}</div>",
		},
		{
			name:  "bare url",
			input: "<p>" + testLogoURL + "</p><p>" + testLogoURL + "</p>",
			vars:  map[string]any{"ecole_logo": testLogoURL},
			want:  "<p>" + tag + "</p><p>" + tag + "</p>",
		},
		{
			name:  "url in src is kept",
			input: `<img src="` + testLogoURL + `">`,
			vars:  map[string]any{"ecole_logo": testLogoURL},
			want:  `<img src="` + testLogoURL + `">`,
		},
		{
			name:  "url in href is kept",
			input: `<a href="` + testLogoURL + `">logo</a>`,
			vars:  map[string]any{"ecole_logo": testLogoURL},
			want:  `<a href="` + testLogoURL + `">logo</a>`,
		},
		{
			name:  "canonical tag is not rewritten",
			input: tag,
			vars:  map[string]any{"ecole_logo": testLogoURL},
			want:  tag,
		},
		{
			name:  "placeholder inside attribute is kept",
			input: `<img src="{organization_logo}">`,
			vars:  map[string]any{"organization_logo": testLogoURL},
			want:  `<img src="{organization_logo}">`,
		},
		{
			name:  "keys are independent",
			input: "{ecole_logo}{organisation_logo}",
			vars:  map[string]any{"ecole_logo": "https://a/1.png", "organisation_logo": "https://a/2.png"},
			want:  tag + LogoTag("organisation_logo"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeLogos(tc.input, Flatten(tc.vars)))
		})
	}
}

func newTestResolver(fetcher fetch.ImageFetcher, obs Observer) *logoResolver {
	return &logoResolver{
		fetcher:  fetcher,
		inline:   true,
		logger:   NewLogger(io.Discard, LogOff),
		observer: obs,
	}
}

func TestLogoResolver_Resolve(t *testing.T) {
	png := fetch.Image{MIMEType: "image/png", Data: []byte("png-bytes")}

	testCases := []struct {
		name     string
		mock     func(ctrl *gomock.Controller) fetch.ImageFetcher
		input    string
		vars     map[string]any
		inline   bool
		contains []string
		excludes []string
		outcomes []string
	}{
		{
			name: "inlined",
			mock: func(ctrl *gomock.Controller) fetch.ImageFetcher {
				f := fetchmocks.NewMockImageFetcher(ctrl)
				f.EXPECT().Fetch(gomock.Any(), testLogoURL).Return(png, nil)
				return f
			},
			input:    "<div>{ecole_logo}</div>",
			vars:     map[string]any{"ecole_logo": testLogoURL},
			inline:   true,
			contains: []string{`src="` + png.DataURI() + `"`, `data-logo-var="{ecole_logo}"`},
			excludes: []string{testLogoURL},
			outcomes: []string{LogoInlined},
		},
		{
			name: "fetched once per url",
			mock: func(ctrl *gomock.Controller) fetch.ImageFetcher {
				f := fetchmocks.NewMockImageFetcher(ctrl)
				f.EXPECT().Fetch(gomock.Any(), testLogoURL).Return(png, nil).Times(1)
				return f
			},
			input:    "{ecole_logo}<hr>" + testLogoURL,
			vars:     map[string]any{"ecole_logo": testLogoURL},
			inline:   true,
			contains: []string{png.DataURI()},
			excludes: []string{testLogoURL},
			outcomes: []string{LogoInlined},
		},
		{
			name: "fetch failure keeps url",
			mock: func(ctrl *gomock.Controller) fetch.ImageFetcher {
				f := fetchmocks.NewMockImageFetcher(ctrl)
				f.EXPECT().Fetch(gomock.Any(), testLogoURL).Return(fetch.Image{}, errors.New("timeout"))
				return f
			},
			input:    "<div>{ecole_logo}</div>",
			vars:     map[string]any{"ecole_logo": testLogoURL},
			inline:   true,
			contains: []string{`src="` + testLogoURL + `"`},
			outcomes: []string{LogoFallback},
		},
		{
			name: "inlining disabled",
			mock: func(ctrl *gomock.Controller) fetch.ImageFetcher {
				return fetchmocks.NewMockImageFetcher(ctrl)
			},
			input:    "<div>{ecole_logo}</div>",
			vars:     map[string]any{"ecole_logo": testLogoURL},
			inline:   false,
			contains: []string{`src="` + testLogoURL + `"`},
		},
		{
			name: "data uri value used as is",
			mock: func(ctrl *gomock.Controller) fetch.ImageFetcher {
				return fetchmocks.NewMockImageFetcher(ctrl)
			},
			input:    "<div>{ecole_logo}</div>",
			vars:     map[string]any{"ecole_logo": png.DataURI()},
			inline:   true,
			contains: []string{`src="` + png.DataURI() + `"`},
		},
		{
			name: "no value hides the tag",
			mock: func(ctrl *gomock.Controller) fetch.ImageFetcher {
				return fetchmocks.NewMockImageFetcher(ctrl)
			},
			input:    `<p><img alt="Logo" style="max-height:55px;" data-logo-var="{ecole_logo}" /></p>`,
			inline:   true,
			contains: []string{"<img", "display: none", `data-logo-var="{ecole_logo}"`},
			excludes: []string{"src="},
			outcomes: []string{LogoHidden},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			obs := newRecordingObserver()
			r := newTestResolver(tc.mock(ctrl), obs)
			r.inline = tc.inline

			flat := Flatten(tc.vars)
			out := r.Resolve(context.Background(), NormalizeLogos(tc.input, flat), flat)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, out, s)
			}
			assert.Equal(t, tc.outcomes, obs.logos["ecole_logo"])
		})
	}
}

func TestLogoResolver_IgnoresOtherImages(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newTestResolver(fetchmocks.NewMockImageFetcher(ctrl), NopObserver{})

	input := `<img src="photo.jpg" alt="x">`
	out := r.Resolve(context.Background(), input, Flatten(map[string]any{"ecole_logo": testLogoURL}))
	require.Equal(t, input, out)
}
