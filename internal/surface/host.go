package surface

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/tabforge/tabforge/internal/render/element"
	"github.com/tabforge/tabforge/internal/shared/id"
	"github.com/tabforge/tabforge/internal/shared/types"
)

// ErrClosed is returned when operating on a released host
var ErrClosed = errors.New("surface host is closed")

// Config defines surface host configuration
type Config struct {
	HeightFloor  float64       // Minimum applied height in CSS pixels
	PollInterval time.Duration // Reporter fallback polling interval
}

// DefaultConfig returns production-ready surface configuration
func DefaultConfig() Config {
	return Config{
		HeightFloor:  200,
		PollInterval: 500 * time.Millisecond,
	}
}

// Host owns one isolated rendering context for one tab.
//
// The host holds the wrapped document, the negotiated display height and
// the navigation policy. It is never reused across tabs and must be
// released with Close before the owning tab drops its reference, since
// the client-side context may hold native rendering resources.
type Host struct {
	id     id.SurfaceID
	tabID  string
	config Config
	policy *NavigationPolicy

	mu         sync.RWMutex
	payload    string
	document   string
	generation uint64 // bumped on every reload
	height     float64
	reported   bool
	ignored    uint64
	closed     bool
}

// NewHost creates a host for one tab
func NewHost(tabID string, config Config) *Host {
	if config.HeightFloor <= 0 {
		config.HeightFloor = DefaultConfig().HeightFloor
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	return &Host{
		id:     id.NewSurfaceID(),
		tabID:  tabID,
		config: config,
		policy: NewNavigationPolicy(),
		height: config.HeightFloor,
	}
}

// ID returns the surface handle ID
func (h *Host) ID() id.SurfaceID {
	return h.id
}

// TabID returns the owning tab's ID
func (h *Host) TabID() string {
	return h.tabID
}

// SetPayload installs a payload, wrapping it for the isolated context.
// A byte-identical payload is a no-op; any change triggers exactly one
// reload. Returns whether a reload happened.
func (h *Host) SetPayload(payload string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false, ErrClosed
	}
	if h.generation > 0 && payload == h.payload {
		return false, nil
	}

	h.payload = payload
	h.document = Wrap(payload, int(h.config.PollInterval.Milliseconds()))
	h.generation++
	h.height = h.config.HeightFloor
	h.reported = false

	return true, nil
}

// Document returns the wrapped document for the isolated context
func (h *Host) Document() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.document
}

// Generation returns the current reload generation
func (h *Host) Generation() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.generation
}

// ApplyMessage handles one inbound message from the isolated context.
// Only numeric payloads on the approved height channel are applied,
// clamped to the configured floor; everything else is ignored and the
// prior height retained. Callers marshal onto a single dispatch path
// before invoking. Returns whether the message was applied.
func (h *Host) ApplyMessage(msg types.SurfaceMessage) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || msg.Type != HeightChannel {
		h.ignored++
		return false
	}

	value, ok := numeric(msg.Value)
	if !ok {
		h.ignored++
		return false
	}

	if value < h.config.HeightFloor {
		value = h.config.HeightFloor
	}
	h.height = value
	h.reported = true
	return true
}

// Height returns the negotiated display height in CSS pixels
func (h *Host) Height() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.height
}

// Ignored returns how many inbound messages were dropped
func (h *Host) Ignored() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ignored
}

// EvaluateNavigation runs a navigation attempt from the context through
// the policy machine.
func (h *Host) EvaluateNavigation(rawURL string) Decision {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()

	if closed {
		return DecisionCancelled
	}
	return h.policy.Evaluate(rawURL)
}

// Policy exposes the navigation policy machine
func (h *Host) Policy() *NavigationPolicy {
	return h.policy
}

// Container renders the host as an element for the host layout: the
// wrapped document as srcdoc inside a capability-restricted frame sized
// to the negotiated height.
func (h *Host) Container() *element.Element {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return element.New("iframe").
		WithClass("surface").
		WithAttr("sandbox", "allow-scripts").
		WithAttr("srcdoc", h.document).
		WithAttr("data-surface-id", h.id.String()).
		WithAttr("data-generation", strconv.FormatUint(h.generation, 10)).
		WithAttr("style", "height:"+strconv.FormatFloat(h.height, 'f', -1, 64)+"px")
}

// Close releases the context deterministically. Idempotent; after Close
// every message is ignored and every navigation cancelled.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.document = ""
	h.payload = ""
	return nil
}

// Closed reports whether the host has been released
func (h *Host) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// numeric coerces a JSON-decoded message value into a height. Numbers
// and numeric strings pass; anything else is rejected.
func numeric(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
