package tab

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabforge/tabforge/internal/shared/types"
)

func openDynamic(t *testing.T, e *Engine, source string) *types.GeneratedTab {
	t.Helper()
	tab, err := e.Open(&types.TabDescriptor{
		Title:    "Widget",
		Encoding: types.EncodingDynamicSource,
		Payload:  source,
	})
	require.NoError(t, err)
	return tab
}

func TestRefineSwapsSourceAtomically(t *testing.T) {
	refiner := &stubRefiner{result: &types.Refinement{
		NewSource:     `function App() { return h("Box", {}, "after"); }`,
		ChangeSummary: "replaced the label",
	}}
	e := newTestEngine(t, refiner)

	tab := openDynamic(t, e, `function App() { return h("Box", {}, "before"); }`)
	el, err := e.Render(context.Background(), tab.ID)
	require.NoError(t, err)
	assert.Contains(t, el.HTML(), "before")

	require.NoError(t, e.Refine(context.Background(), tab.ID, "say after instead"))
	assert.Equal(t, 1, refiner.calls)

	state, _ := e.State(tab.ID)
	assert.Equal(t, types.StateCompiling, state)

	got, ok := e.Get(tab.ID)
	require.True(t, ok)
	assert.Contains(t, got.Payload, "after")

	el, err = e.Render(context.Background(), tab.ID)
	require.NoError(t, err)
	assert.Contains(t, el.HTML(), "after")
	assert.NotContains(t, el.HTML(), "before")
}

func TestRefineSuccessLogsTwoTurns(t *testing.T) {
	refiner := &stubRefiner{result: &types.Refinement{
		NewSource:     `function App() { return h("Box", {}); }`,
		ChangeSummary: "did the thing",
	}}
	e := newTestEngine(t, refiner)
	tab := openDynamic(t, e, `function App() { return h("Box", {}); }`)

	require.NoError(t, e.Refine(context.Background(), tab.ID, "do the thing"))

	turns, err := e.Turns(tab.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, types.RoleRequester, turns[0].Role)
	assert.Equal(t, "do the thing", turns[0].Text)
	assert.Equal(t, 1, turns[0].Ordinal)
	assert.Equal(t, types.RoleSystem, turns[1].Role)
	assert.Equal(t, "did the thing", turns[1].Text)
	assert.Equal(t, 2, turns[1].Ordinal)
}

func TestRefineFailureLogsOneTurnAndKeepsSource(t *testing.T) {
	refiner := &stubRefiner{err: errors.New("model unavailable")}
	e := newTestEngine(t, refiner)

	source := `function App() { return h("Box", {}, "stable"); }`
	tab := openDynamic(t, e, source)
	_, err := e.Render(context.Background(), tab.ID)
	require.NoError(t, err)

	err = e.Refine(context.Background(), tab.ID, "please improve")
	require.Error(t, err)

	turns, terr := e.Turns(tab.ID)
	require.NoError(t, terr)
	require.Len(t, turns, 1)
	assert.Equal(t, types.RoleSystem, turns[0].Role)
	assert.Contains(t, turns[0].Text, "model unavailable")
	assert.Equal(t, 1, turns[0].Ordinal)

	got, _ := e.Get(tab.ID)
	assert.Equal(t, source, got.Payload)

	// The prior mount survives a failed round
	state, _ := e.State(tab.ID)
	assert.Equal(t, types.StateRendered, state)
	el, err := e.Render(context.Background(), tab.ID)
	require.NoError(t, err)
	assert.Contains(t, el.HTML(), "stable")
}

func TestRefineUnusableResult(t *testing.T) {
	refiner := &stubRefiner{result: &types.Refinement{NewSource: "   "}}
	e := newTestEngine(t, refiner)

	source := `function App() { return h("Box", {}); }`
	tab := openDynamic(t, e, source)

	err := e.Refine(context.Background(), tab.ID, "try")
	assert.ErrorIs(t, err, ErrUnusableRefinement)

	turns, _ := e.Turns(tab.ID)
	require.Len(t, turns, 1)
	assert.Equal(t, types.RoleSystem, turns[0].Role)

	got, _ := e.Get(tab.ID)
	assert.Equal(t, source, got.Payload)
}

func TestRefineRecoversFromBrokenSource(t *testing.T) {
	refiner := &stubRefiner{result: &types.Refinement{
		NewSource: `function App() { return h("Box", {}, "fixed"); }`,
	}}
	e := newTestEngine(t, refiner)

	tab := openDynamic(t, e, `function NotApp() {}`)
	el, err := e.Render(context.Background(), tab.ID)
	require.NoError(t, err)
	assert.Contains(t, el.HTML(), "dynamic-error")

	state, _ := e.State(tab.ID)
	require.Equal(t, types.StateError, state)

	// Error is terminal for this source; only refinement moves it on
	require.NoError(t, e.Refine(context.Background(), tab.ID, "fix it"))
	state, _ = e.State(tab.ID)
	assert.Equal(t, types.StateCompiling, state)

	el, err = e.Render(context.Background(), tab.ID)
	require.NoError(t, err)
	assert.Contains(t, el.HTML(), "fixed")
}

func TestRefineOrdinalsAccumulate(t *testing.T) {
	refiner := &stubRefiner{result: &types.Refinement{
		NewSource: `function App() { return h("Box", {}); }`,
	}}
	e := newTestEngine(t, refiner)
	tab := openDynamic(t, e, `function App() { return h("Box", {}); }`)

	require.NoError(t, e.Refine(context.Background(), tab.ID, "first"))

	refiner.result = nil
	refiner.err = errors.New("flaky")
	require.Error(t, e.Refine(context.Background(), tab.ID, "second"))

	turns, _ := e.Turns(tab.ID)
	require.Len(t, turns, 3)
	for i, turn := range turns {
		assert.Equal(t, i+1, turn.Ordinal)
	}
}

func TestRefineWrongEncoding(t *testing.T) {
	e := newTestEngine(t, &stubRefiner{})

	tab, err := e.Open(&types.TabDescriptor{
		Title:    "Plain",
		Encoding: types.EncodingTree,
		Nodes:    []types.ContentNode{{Kind: types.NodeDivider}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.Refine(context.Background(), tab.ID, "nope"), ErrNotDynamic)
	assert.ErrorIs(t, e.Refine(context.Background(), "tab_missing", "nope"), ErrTabNotFound)
}

func TestRefineLogClearedOnDispose(t *testing.T) {
	refiner := &stubRefiner{result: &types.Refinement{
		NewSource: `function App() { return h("Box", {}); }`,
	}}
	e := newTestEngine(t, refiner)
	tab := openDynamic(t, e, `function App() { return h("Box", {}); }`)

	require.NoError(t, e.Refine(context.Background(), tab.ID, "first"))
	require.NoError(t, e.Dispose(tab.ID))

	_, err := e.Turns(tab.ID)
	assert.ErrorIs(t, err, ErrTabNotFound)
}
