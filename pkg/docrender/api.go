package docrender

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/codegen"
	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/fetch"
)

// Engine renders templates. It holds no per-render state and is safe for
// concurrent use. Use New to create one.
type Engine struct {
	config   *Config
	logger   *Logger
	fetcher  fetch.ImageFetcher
	codes    codegen.Provider
	observer Observer
	now      func() time.Time
	cache    *FragmentCache
	markdown *markdownConverter
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the global configuration for this engine.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		if config != nil {
			e.config = config
		}
	}
}

func WithLogger(logger *Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFetcher sets the logo fetcher. The default is an HTTP fetcher bounded
// by Config.LogoFetchTimeout.
func WithFetcher(fetcher fetch.ImageFetcher) Option {
	return func(e *Engine) {
		e.fetcher = fetcher
	}
}

// WithCodeProvider sets the QR code and barcode source, overriding
// Config.CodeImageMode.
func WithCodeProvider(provider codegen.Provider) Option {
	return func(e *Engine) {
		e.codes = provider
	}
}

func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// WithClock sets the time source for date placeholders.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an engine from the global configuration and opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		config:   GetGlobalConfig(),
		observer: NopObserver{},
		now:      time.Now,
		markdown: newMarkdownConverter(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = GetLogger()
	}
	if e.fetcher == nil {
		e.fetcher = fetch.NewHTTPFetcher(e.config.LogoFetchTimeout)
	}
	if e.codes == nil {
		if e.config.CodeImageMode == CodeImageInline {
			e.codes = codegen.NewInlineProvider()
		} else {
			e.codes = codegen.NewRemoteProvider()
		}
	}
	e.cache = NewFragmentCacheWithConfig(CacheConfig{
		MaxSize: e.config.CacheMaxSize,
		TTL:     e.config.CacheTTL,
	})
	return e
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Render produces the complete HTML document for tpl. Per-fragment problems
// such as a failed logo download degrade to a fallback; any other failure
// aborts the render and no HTML is returned.
func (e *Engine) Render(ctx context.Context, tpl *Template, vars map[string]any) (result *Result, err error) {
	if tpl == nil {
		return nil, ErrNilTemplate
	}

	start := time.Now()
	renderID := shortuuid.New()
	log := e.logger.WithFields(Fields{
		"render_id":   renderID,
		"template_id": tpl.ID,
	})

	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
		if err != nil {
			var re *RenderError
			if errors.As(err, &re) {
				re.TemplateID = tpl.ID
			} else {
				err = &RenderError{TemplateID: tpl.ID, Cause: err}
			}
			log.WithError(err).WithField("payload", e.payloadPreview(vars)).Error("render failed")
			err = errors.Wrapf(err, "render %s", renderID)
			result = nil
		}

		pages := 0
		if result != nil {
			pages = result.PageCount
		}
		e.observer.RenderCompleted(time.Since(start), pages, err)
	}()

	result, err = e.render(ctx, tpl, vars, log)
	if err == nil {
		log.WithFields(Fields{"pages": result.PageCount, "duration": time.Since(start).String()}).Debug("render completed")
	}
	return result, err
}

// RenderFragment runs one fragment through the per-fragment pipeline without
// header, footer or document assembly.
func (e *Engine) RenderFragment(ctx context.Context, text string, vars map[string]any) (string, error) {
	log := e.logger.WithField("render_id", shortuuid.New())
	flat := Flatten(vars)
	out, err := e.renderFragment(ctx, FragmentBody, text, flat, FixedReplacements(e.now(), e.config.DateFormat), log)
	if err != nil {
		return "", errors.Wrap(err, "render fragment")
	}
	return out, nil
}

// Validate checks tpl without rendering it.
func (e *Engine) Validate(tpl *Template) *ValidationResult {
	return ValidateTemplate(tpl)
}

// payloadPreview is the JSON form of vars cut to MaxPayloadLogBytes.
func (e *Engine) payloadPreview(vars map[string]any) string {
	data, err := json.Marshal(vars)
	if err != nil {
		return "<unencodable payload>"
	}
	limit := e.config.MaxPayloadLogBytes
	if limit > 0 && len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// DefaultEngine returns the shared engine built from the global configuration.
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// Render renders tpl with the default engine.
func Render(ctx context.Context, tpl *Template, vars map[string]any) (*Result, error) {
	return DefaultEngine().Render(ctx, tpl, vars)
}
