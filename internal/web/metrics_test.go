package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender"
)

func TestMetrics_Observer(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RenderCompleted(20*time.Millisecond, 2, nil)
	m.RenderCompleted(time.Millisecond, 0, errors.New("boom"))
	m.RenderCompleted(time.Millisecond, 1, nil)
	m.LogoFetched("ecole_logo", docrender.LogoInlined)
	m.LogoFetched("organization_logo", docrender.LogoFallback)
	m.LogoFetched("ecole_logo", docrender.LogoInlined)
	m.FragmentRendered(docrender.FragmentBody, time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.renders.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.logoFetches.WithLabelValues(docrender.LogoInlined)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logoFetches.WithLabelValues(docrender.LogoFallback)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.renderDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fragmentDuration))
}

func TestMetrics_WiredIntoEngine(t *testing.T) {
	logo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n"))
	}))
	defer logo.Close()

	m := NewMetrics(nil)
	engine := docrender.New(
		docrender.WithLogger(docrender.NewLogger(nil, docrender.LogOff)),
		docrender.WithObserver(m),
	)
	tpl := &docrender.Template{ID: "t1", Content: docrender.Content{HTML: "<p>{ecole_logo}</p>"}}

	_, err := engine.Render(context.Background(), tpl, map[string]any{"ecole_logo": logo.URL + "/logo.png"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("ok")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.logoFetches.WithLabelValues(docrender.LogoInlined)), 1.0)
	assert.Equal(t, 3, testutil.CollectAndCount(m.fragmentDuration))
}
