package docrender

import "time"

// Logo fetch outcomes reported to an Observer.
const (
	LogoInlined  = "inlined"
	LogoFallback = "fallback"
	LogoHidden   = "hidden"
)

// Fragment names.
const (
	FragmentHeader = "header"
	FragmentBody   = "body"
	FragmentFooter = "footer"
)

// Observer receives render telemetry. Implementations must be safe for
// concurrent use: fragments are processed in parallel.
type Observer interface {
	FragmentRendered(fragment string, d time.Duration, err error)
	LogoFetched(key string, outcome string)
	RenderCompleted(d time.Duration, pages int, err error)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) FragmentRendered(string, time.Duration, error) {}
func (NopObserver) LogoFetched(string, string)                    {}
func (NopObserver) RenderCompleted(time.Duration, int, error)     {}
