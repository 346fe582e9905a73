package auth

import (
	"sync"

	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
)

// InFlight admits at most one login submission per form instance.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[string]struct{})}
}

// Acquire claims formID. The returned release must be called once the submission settles.
// A second Acquire for the same id before release returns ErrSubmissionInFlight.
func (f *InFlight) Acquire(formID string) (release func(), err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.ids[formID]; busy {
		return nil, errors.ErrSubmissionInFlight
	}
	f.ids[formID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.ids, formID)
			f.mu.Unlock()
		})
	}, nil
}

func (f *InFlight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}
