package tab

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tabforge/tabforge/internal/dynamic"
	"github.com/tabforge/tabforge/internal/infrastructure/monitoring"
	"github.com/tabforge/tabforge/internal/render/element"
	"github.com/tabforge/tabforge/internal/render/primitive"
	"github.com/tabforge/tabforge/internal/shared/id"
	"github.com/tabforge/tabforge/internal/shared/types"
	"github.com/tabforge/tabforge/internal/surface"
)

var (
	// ErrTabNotFound is returned when operating on an unknown tab
	ErrTabNotFound = errors.New("tab not found")
	// ErrNotDynamic is returned when refining a non-dynamic tab
	ErrNotDynamic = errors.New("tab does not carry dynamic source")
)

// Refiner is the AI collaborator contract for refinement
type Refiner interface {
	Refine(ctx context.Context, currentSource, instruction string, sources []types.SourceAttribution) (*types.Refinement, error)
}

// Generator is the AI collaborator contract for tab generation
type Generator interface {
	Generate(ctx context.Context, prompt string, extra map[string]string) (*types.TabDescriptor, error)
}

// Config defines engine configuration
type Config struct {
	Surface   surface.Config
	Compiler  dynamic.Config
	QueueSize int // Inbound surface message queue depth
}

// DefaultConfig returns production-ready engine configuration
func DefaultConfig() Config {
	return Config{
		Surface:   surface.DefaultConfig(),
		Compiler:  dynamic.DefaultConfig(),
		QueueSize: 256,
	}
}

// liveTab is the engine-internal state for one open tab.
//
// mu guards the mutable fields so tabs render, compile and refine
// independently of each other; the engine mutex guards only the map.
// refineMu serializes the refinement flow (which includes a collaborator
// round trip) without blocking renders of other tabs.
type liveTab struct {
	mu         sync.Mutex
	tab        *types.GeneratedTab
	state      types.TabState
	generation uint64 // liveness token; bumped on dispose

	surf       *surface.Host
	component  *dynamic.Component
	compiled   string // source version the component was compiled from
	mounted    *element.Element
	compileErr *dynamic.CompileError

	turns    []types.RefinementTurn
	refineMu sync.Mutex
}

// Engine orchestrates tab lifecycle
type Engine struct {
	mu   sync.RWMutex
	tabs map[string]*liveTab

	config    Config
	refiner   Refiner
	primitive *primitive.Renderer
	compiler  *dynamic.Compiler
	metrics   *monitoring.Metrics

	messages chan types.SurfaceMessage
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewEngine creates a tab engine and starts its dispatch goroutine
func NewEngine(config Config, refiner Refiner) *Engine {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	e := &Engine{
		tabs:      make(map[string]*liveTab),
		config:    config,
		refiner:   refiner,
		primitive: primitive.New(),
		compiler:  dynamic.NewCompiler(config.Compiler),
		messages:  make(chan types.SurfaceMessage, config.QueueSize),
		quit:      make(chan struct{}),
	}

	e.wg.Add(1)
	go e.dispatch()

	return e
}

// WithMetrics adds metrics tracking to the engine
func (e *Engine) WithMetrics(metrics *monitoring.Metrics) *Engine {
	e.metrics = metrics
	return e
}

// Open registers a tab from a collaborator descriptor. Legacy
// single-enum descriptors are folded into a one-node tree first.
func (e *Engine) Open(descriptor *types.TabDescriptor) (*types.GeneratedTab, error) {
	tab := descriptor.Normalize()
	if tab.ID == "" {
		tab.ID = id.NewTabID().String()
	}
	if err := tab.Validate(); err != nil {
		return nil, err
	}

	lt := &liveTab{tab: tab, state: types.StateRendered}
	switch tab.Encoding {
	case types.EncodingDocument:
		lt.surf = surface.NewHost(tab.ID, e.config.Surface)
	case types.EncodingDynamicSource:
		lt.state = types.StateCompiling
	}

	e.mu.Lock()
	e.tabs[tab.ID] = lt
	count := len(e.tabs)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.TabOpened(string(tab.Encoding), count)
	}

	tabCopy := *tab
	return &tabCopy, nil
}

// Get retrieves a copy of an open tab
func (e *Engine) Get(tabID string) (*types.GeneratedTab, bool) {
	lt, ok := e.lookup(tabID)
	if !ok {
		return nil, false
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	tabCopy := *lt.tab
	return &tabCopy, true
}

// State returns a dynamic tab's lifecycle state
func (e *Engine) State(tabID string) (types.TabState, bool) {
	lt, ok := e.lookup(tabID)
	if !ok {
		return "", false
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	return lt.state, true
}

// Render produces the visual element for a tab. Idempotent for an
// unchanged tab: tree rendering is pure, document payloads reload only
// on change, and dynamic source compiles once per source version.
func (e *Engine) Render(ctx context.Context, tabID string) (*element.Element, error) {
	lt, ok := e.lookup(tabID)
	if !ok {
		return nil, ErrTabNotFound
	}

	lt.mu.Lock()
	encoding := lt.tab.Encoding

	var el *element.Element
	var err error
	switch encoding {
	case types.EncodingTree:
		el = e.primitive.Render(lt.tab.Nodes)
	case types.EncodingDocument:
		var reloaded bool
		if reloaded, err = lt.surf.SetPayload(lt.tab.Payload); err == nil {
			el = lt.surf.Container()
			if reloaded && e.metrics != nil {
				e.metrics.SurfaceReloaded()
			}
		}
	case types.EncodingDynamicSource:
		el = e.renderDynamicLocked(ctx, lt)
	default:
		err = fmt.Errorf("tab %s has unknown encoding %q", tabID, encoding)
	}
	lt.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.TabRendered(string(encoding))
	}
	return el, nil
}

// renderDynamicLocked walks the compile/mount pipeline for a dynamic
// tab. The caller holds the tab lock, which guarantees only one compile
// attempt is in flight for this tab.
func (e *Engine) renderDynamicLocked(ctx context.Context, lt *liveTab) *element.Element {
	source := lt.tab.Payload

	// Already settled for this source version
	if lt.compiled == source {
		if lt.mounted != nil {
			return lt.mounted
		}
		if lt.compileErr != nil {
			return e.failureElement(lt.compileErr)
		}
	}

	lt.state = types.StateCompiling
	lt.compiled = source
	lt.mounted = nil
	lt.component = nil
	lt.compileErr = nil

	comp, cerr := e.compiler.Compile(ctx, source)
	if cerr == nil {
		var mountedEl *element.Element
		if mountedEl, cerr = comp.Mount(ctx); cerr == nil {
			lt.component = comp
			lt.mounted = mountedEl
			lt.state = types.StateRendered
			return mountedEl
		}
	}

	lt.state = types.StateError
	lt.compileErr = cerr
	if e.metrics != nil {
		e.metrics.CompileFailed(string(cerr.Stage))
	}
	return e.failureElement(cerr)
}

// failureElement is the visible error state for a failed dynamic tab,
// carrying the refine affordance. A mount-stage fault renders the
// boundary's blank instead of error text.
func (e *Engine) failureElement(cerr *dynamic.CompileError) *element.Element {
	if cerr.Stage == dynamic.StageMount {
		return dynamic.Blank().WithAttr("data-action", "refine")
	}
	return element.New("div").WithClass("dynamic-error").
		WithAttr("data-action", "refine").
		WithText("content failed to build: " + cerr.Message)
}

// Deliver queues one inbound surface message for the dispatch goroutine.
// The queue is the single path onto engine state; a full queue drops the
// message rather than blocking the transport.
func (e *Engine) Deliver(msg types.SurfaceMessage) bool {
	select {
	case e.messages <- msg:
		return true
	case <-e.quit:
		return false
	default:
		return false
	}
}

// dispatch applies surface messages one at a time. Every message is
// guarded by a liveness check against the owning tab.
func (e *Engine) dispatch() {
	defer e.wg.Done()
	for {
		select {
		case msg := <-e.messages:
			e.apply(msg)
		case <-e.quit:
			return
		}
	}
}

// flushBarrier is an engine-internal message type acknowledged by the
// dispatch goroutine once everything queued before it was applied.
const flushBarrier = "engine-flush"

func (e *Engine) apply(msg types.SurfaceMessage) {
	if msg.Type == flushBarrier {
		if done, ok := msg.Value.(chan struct{}); ok {
			close(done)
		}
		return
	}

	lt, ok := e.lookup(msg.TabID)

	// Liveness: the tab may have been disposed between send and apply
	if !ok || lt.surf == nil {
		if e.metrics != nil {
			e.metrics.SurfaceMessageIgnored()
		}
		return
	}

	applied := lt.surf.ApplyMessage(msg)
	if e.metrics != nil {
		if applied {
			e.metrics.SurfaceHeightApplied(lt.surf.Height())
		} else {
			e.metrics.SurfaceMessageIgnored()
		}
	}
}

// Flush waits until previously delivered messages have been applied.
// Intended for tests and shutdown paths.
func (e *Engine) Flush() {
	done := make(chan struct{})
	select {
	case e.messages <- types.SurfaceMessage{Type: flushBarrier, Value: done}:
		select {
		case <-done:
		case <-e.quit:
		}
	case <-e.quit:
	}
}

// Turns returns a copy of a tab's refinement log
func (e *Engine) Turns(tabID string) ([]types.RefinementTurn, error) {
	lt, ok := e.lookup(tabID)
	if !ok {
		return nil, ErrTabNotFound
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	return append([]types.RefinementTurn{}, lt.turns...), nil
}

// Surface exposes a document tab's surface host (nil for other encodings)
func (e *Engine) Surface(tabID string) (*surface.Host, bool) {
	lt, ok := e.lookup(tabID)
	if !ok {
		return nil, false
	}
	return lt.surf, lt.surf != nil
}

// Dispose releases a tab synchronously: its surface host is closed and
// its refinement log cleared before Dispose returns, so a late size
// report can never land on torn-down state.
func (e *Engine) Dispose(tabID string) error {
	e.mu.Lock()
	lt, ok := e.tabs[tabID]
	if ok {
		delete(e.tabs, tabID)
	}
	count := len(e.tabs)
	e.mu.Unlock()

	if !ok {
		return ErrTabNotFound
	}

	lt.mu.Lock()
	lt.generation++
	lt.turns = nil
	lt.component = nil
	lt.mounted = nil
	surf := lt.surf
	lt.mu.Unlock()

	if surf != nil {
		if err := surf.Close(); err != nil {
			return err
		}
	}
	if e.metrics != nil {
		e.metrics.TabClosed(count)
	}
	return nil
}

// Count returns the number of open tabs
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.tabs)
}

// Close disposes every tab and stops the dispatch goroutine
func (e *Engine) Close() error {
	e.mu.RLock()
	ids := make([]string, 0, len(e.tabs))
	for tabID := range e.tabs {
		ids = append(ids, tabID)
	}
	e.mu.RUnlock()

	for _, tabID := range ids {
		_ = e.Dispose(tabID)
	}

	close(e.quit)
	e.wg.Wait()
	return nil
}

func (e *Engine) lookup(tabID string) (*liveTab, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	lt, ok := e.tabs[tabID]
	return lt, ok
}
