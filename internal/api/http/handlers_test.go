package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabforge/tabforge/internal/domain/tab"
	"github.com/tabforge/tabforge/internal/shared/types"
)

type stubCollaborator struct {
	descriptor *types.TabDescriptor
	refinement *types.Refinement
	err        error
}

func (s *stubCollaborator) Generate(_ context.Context, _ string, _ map[string]string) (*types.TabDescriptor, error) {
	return s.descriptor, s.err
}

func (s *stubCollaborator) Refine(_ context.Context, _, _ string, _ []types.SourceAttribution) (*types.Refinement, error) {
	return s.refinement, s.err
}

func setupRouter(t *testing.T, collab *stubCollaborator) (*gin.Engine, *tab.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := tab.NewEngine(tab.DefaultConfig(), collab)
	t.Cleanup(func() { _ = engine.Close() })

	h := NewHandlers(engine, collab, nil)
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.POST("/tabs", h.GenerateTab)
	router.POST("/tabs/open", h.OpenTab)
	router.GET("/tabs/:id", h.GetTab)
	router.GET("/tabs/:id/render", h.RenderTab)
	router.POST("/tabs/:id/refine", h.RefineTab)
	router.GET("/tabs/:id/turns", h.GetTurns)
	router.POST("/tabs/:id/navigate", h.EvaluateNavigation)
	router.DELETE("/tabs/:id", h.CloseTab)
	return router, engine
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestGenerateTabEndpoint(t *testing.T) {
	collab := &stubCollaborator{descriptor: &types.TabDescriptor{
		Title:    "Coffee",
		Encoding: types.EncodingTree,
		Nodes:    []types.ContentNode{{Kind: types.NodeHeader, Text: "Coffee"}},
	}}
	router, _ := setupRouter(t, collab)

	w := doJSON(router, http.MethodPost, "/tabs", types.GenerateRequest{Prompt: "coffee"})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	created := body["tab"].(map[string]interface{})
	assert.Equal(t, "Coffee", created["title"])
	assert.NotEmpty(t, created["id"])
}

func TestGenerateTabCollaboratorDown(t *testing.T) {
	router, _ := setupRouter(t, &stubCollaborator{err: errors.New("unreachable")})

	w := doJSON(router, http.MethodPost, "/tabs", types.GenerateRequest{Prompt: "coffee"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGenerateTabValidation(t *testing.T) {
	router, _ := setupRouter(t, &stubCollaborator{})

	// Missing prompt fails binding
	w := doJSON(router, http.MethodPost, "/tabs", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOpenAndRenderEndpoints(t *testing.T) {
	router, _ := setupRouter(t, &stubCollaborator{})

	w := doJSON(router, http.MethodPost, "/tabs/open", types.TabDescriptor{
		Title:    "Doc",
		Encoding: types.EncodingDocument,
		Payload:  "<h1>Story</h1>",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tabID := decode(t, w)["tab"].(map[string]interface{})["id"].(string)

	w = doJSON(router, http.MethodGet, "/tabs/"+tabID+"/render", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["html"], "<iframe")
	assert.Contains(t, body["html"], "Story")
}

func TestOpenTabRejectsMixedContent(t *testing.T) {
	router, _ := setupRouter(t, &stubCollaborator{})

	w := doJSON(router, http.MethodPost, "/tabs/open", types.TabDescriptor{
		Title:    "Broken",
		Encoding: types.EncodingTree,
		Nodes:    []types.ContentNode{{Kind: types.NodeDivider}},
		Payload:  "<p>extra</p>",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetTabValidation(t *testing.T) {
	router, _ := setupRouter(t, &stubCollaborator{})

	w := doJSON(router, http.MethodGet, "/tabs/not-a-ulid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/tabs/tab_01HZXW5N8K9P2Q3R4S5T6V7W8X", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefineEndpoint(t *testing.T) {
	collab := &stubCollaborator{refinement: &types.Refinement{
		NewSource:     `function App() { return h("Box", {}, "v2"); }`,
		ChangeSummary: "bumped to v2",
	}}
	router, _ := setupRouter(t, collab)

	w := doJSON(router, http.MethodPost, "/tabs/open", types.TabDescriptor{
		Title:    "Widget",
		Encoding: types.EncodingDynamicSource,
		Payload:  `function App() { return h("Box", {}, "v1"); }`,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tabID := decode(t, w)["tab"].(map[string]interface{})["id"].(string)

	w = doJSON(router, http.MethodPost, "/tabs/"+tabID+"/refine", types.RefineRequest{Instruction: "bump it"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["turns"], 2)

	w = doJSON(router, http.MethodGet, "/tabs/"+tabID+"/turns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["turns"], 2)
}

func TestRefineWrongEncoding(t *testing.T) {
	router, _ := setupRouter(t, &stubCollaborator{})

	w := doJSON(router, http.MethodPost, "/tabs/open", types.TabDescriptor{
		Title:    "Plain",
		Encoding: types.EncodingTree,
		Nodes:    []types.ContentNode{{Kind: types.NodeDivider}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tabID := decode(t, w)["tab"].(map[string]interface{})["id"].(string)

	w = doJSON(router, http.MethodPost, "/tabs/"+tabID+"/refine", types.RefineRequest{Instruction: "nope"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestNavigationEndpoint(t *testing.T) {
	router, _ := setupRouter(t, &stubCollaborator{})

	w := doJSON(router, http.MethodPost, "/tabs/open", types.TabDescriptor{
		Title:    "Doc",
		Encoding: types.EncodingDocument,
		Payload:  "<p>hi</p>",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tabID := decode(t, w)["tab"].(map[string]interface{})["id"].(string)

	w = doJSON(router, http.MethodPost, "/tabs/"+tabID+"/navigate", map[string]string{"url": "https://example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode(t, w)["decision"])

	w = doJSON(router, http.MethodPost, "/tabs/"+tabID+"/navigate", map[string]string{"url": "about:blank"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "allowed", decode(t, w)["decision"])
}

func TestCloseTabEndpoint(t *testing.T) {
	router, engine := setupRouter(t, &stubCollaborator{})

	w := doJSON(router, http.MethodPost, "/tabs/open", types.TabDescriptor{
		Title:    "Doc",
		Encoding: types.EncodingDocument,
		Payload:  "<p>bye</p>",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tabID := decode(t, w)["tab"].(map[string]interface{})["id"].(string)

	w = doJSON(router, http.MethodDelete, "/tabs/"+tabID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, engine.Count())

	w = doJSON(router, http.MethodDelete, "/tabs/"+tabID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
