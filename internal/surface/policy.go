package surface

import (
	"net/url"
	"strings"
	"sync"
)

// NavState is one state of the navigation policy machine
type NavState string

const (
	NavIdle       NavState = "idle"
	NavEvaluating NavState = "evaluating"
	NavAllowed    NavState = "allowed"
	NavCancelled  NavState = "cancelled"
)

// Decision is the outcome of one navigation evaluation
type Decision string

const (
	DecisionAllowed   Decision = "allowed"
	DecisionCancelled Decision = "cancelled"
)

// allowedSchemes lists the only schemes a sandboxed context may navigate
// to. Everything else would let the payload leave the sandbox.
var allowedSchemes = map[string]bool{
	"about": true,
	"data":  true,
}

// NavigationPolicy evaluates navigation attempts from an isolated context.
// Transitions: idle -> evaluating -> allowed|cancelled -> idle.
type NavigationPolicy struct {
	mu    sync.Mutex
	state NavState

	evaluated uint64
	cancelled uint64
}

// NewNavigationPolicy creates an idle policy
func NewNavigationPolicy() *NavigationPolicy {
	return &NavigationPolicy{state: NavIdle}
}

// Evaluate runs one navigation attempt through the machine and returns
// the decision. Disallowed attempts are cancelled silently; surfacing
// them would leak sandbox internals without being actionable.
func (p *NavigationPolicy) Evaluate(rawURL string) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = NavEvaluating
	p.evaluated++

	decision := DecisionCancelled
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		if allowedSchemes[strings.ToLower(u.Scheme)] {
			decision = DecisionAllowed
		}
	}

	if decision == DecisionAllowed {
		p.state = NavAllowed
	} else {
		p.state = NavCancelled
		p.cancelled++
	}
	p.state = NavIdle

	return decision
}

// State returns the current machine state
func (p *NavigationPolicy) State() NavState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cancelled returns how many attempts were cancelled
func (p *NavigationPolicy) Cancelled() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}
