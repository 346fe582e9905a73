// Package routeguard decides whether a protected view may render for a session.
package routeguard

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
	"github.com/jrsteele09/dogtv-dashboard/sessions"
)

type State int

const (
	Pending State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Unauthenticated:
		return "UNAUTHENTICATED"
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Evaluate maps a session snapshot onto a guard state.
func Evaluate(snap sessions.Snapshot) State {
	switch {
	case snap.Status == sessions.StatusPending:
		return Pending
	case snap.Identity == nil:
		return Unauthenticated
	default:
		return Authenticated
	}
}

var allowed = map[State][]State{
	Pending:         {Unauthenticated, Authenticated},
	Authenticated:   {Unauthenticated},
	Unauthenticated: {Pending},
}

// Machine tracks the guard state of one view across session changes.
type Machine struct {
	mu    sync.Mutex
	state State
}

func NewMachine() *Machine {
	return &Machine{state: Pending}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Observe moves to the state implied by snap. Observing the current state is a no-op.
func (m *Machine) Observe(snap sessions.Snapshot) (State, error) {
	return m.To(Evaluate(snap))
}

// To moves to next if the transition is allowed.
func (m *Machine) To(next State) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if next == m.state {
		return m.state, nil
	}
	for _, s := range allowed[m.state] {
		if s == next {
			m.state = next
			return next, nil
		}
	}
	return m.state, errors.Wrapf(errors.ErrInvalidTransition, "[routeguard] %s -> %s", m.state, next)
}

// The login view must be exempt or an unauthenticated visitor would loop.
var (
	exemptPaths    = []string{"/login", "/healthz"}
	exemptPrefixes = []string{"/auth/", "/css/", "/js/"}
)

// Exempt reports whether path is always rendered regardless of guard state.
func Exempt(path string) bool {
	for _, p := range exemptPaths {
		if path == p {
			return true
		}
	}
	for _, p := range exemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
