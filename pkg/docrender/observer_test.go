package docrender

import (
	"sync"
	"time"
)

// recordingObserver keeps every event for assertions.
type recordingObserver struct {
	mu        sync.Mutex
	fragments map[string]error
	logos     map[string][]string
	completed []error
	pages     []int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		fragments: make(map[string]error),
		logos:     make(map[string][]string),
	}
}

func (o *recordingObserver) FragmentRendered(fragment string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fragments[fragment] = err
}

func (o *recordingObserver) LogoFetched(key string, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logos[key] = append(o.logos[key], outcome)
}

func (o *recordingObserver) RenderCompleted(_ time.Duration, pages int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, err)
	o.pages = append(o.pages, pages)
}

var _ Observer = NopObserver{}
var _ Observer = (*recordingObserver)(nil)
