package tab

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabforge/tabforge/internal/infrastructure/monitoring"
	"github.com/tabforge/tabforge/internal/shared/types"
)

// Collectors register against the default Prometheus registry, so the
// package shares one Metrics instance across tests.
var sharedMetrics = monitoring.NewMetrics()

func TestRenderCountsDocumentReloads(t *testing.T) {
	e := newTestEngine(t, &stubRefiner{}).WithMetrics(sharedMetrics)

	tab, err := e.Open(&types.TabDescriptor{
		Title:    "Article",
		Encoding: types.EncodingDocument,
		Payload:  "<p>v1</p>",
	})
	require.NoError(t, err)

	before := testutil.ToFloat64(sharedMetrics.SurfaceReloads)

	_, err = e.Render(context.Background(), tab.ID)
	require.NoError(t, err)
	_, err = e.Render(context.Background(), tab.ID)
	require.NoError(t, err)

	// First render loads the payload; the unchanged repeat does not
	assert.Equal(t, before+1, testutil.ToFloat64(sharedMetrics.SurfaceReloads))
}

func TestRefineRecordsRoundOutcomes(t *testing.T) {
	refiner := &stubRefiner{result: &types.Refinement{NewSource: "function App() { return h('div') }"}}
	e := newTestEngine(t, refiner).WithMetrics(sharedMetrics)

	tab, err := e.Open(&types.TabDescriptor{
		Title:    "Widget",
		Encoding: types.EncodingDynamicSource,
		Payload:  "function App() { return h('span') }",
	})
	require.NoError(t, err)

	success := sharedMetrics.RefinementRounds.WithLabelValues("success")
	unusable := sharedMetrics.RefinementRounds.WithLabelValues("unusable")
	successBefore := testutil.ToFloat64(success)
	unusableBefore := testutil.ToFloat64(unusable)

	require.NoError(t, e.Refine(context.Background(), tab.ID, "make it a div"))
	assert.Equal(t, successBefore+1, testutil.ToFloat64(success))

	refiner.result = &types.Refinement{NewSource: "   "}
	assert.ErrorIs(t, e.Refine(context.Background(), tab.ID, "break it"), ErrUnusableRefinement)
	assert.Equal(t, unusableBefore+1, testutil.ToFloat64(unusable))
}
