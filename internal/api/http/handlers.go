package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tabforge/tabforge/internal/domain/tab"
	"github.com/tabforge/tabforge/internal/infrastructure/monitoring"
	"github.com/tabforge/tabforge/internal/shared/id"
	"github.com/tabforge/tabforge/internal/shared/types"
	"github.com/tabforge/tabforge/internal/shared/validate"
	"github.com/tabforge/tabforge/internal/surface"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	engine    *tab.Engine
	generator tab.Generator
	metrics   *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(engine *tab.Engine, generator tab.Generator, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		engine:    engine,
		generator: generator,
		metrics:   metrics,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "TabForge Engine",
		"version": "0.1.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"tabs_open":    h.engine.Count(),
		"collaborator": gin.H{"connected": h.generator != nil},
	})
}

// GenerateTab asks the collaborator for a new tab and opens it
func (h *Handlers) GenerateTab(c *gin.Context) {
	var req types.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Prompt(req.Prompt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Context(req.Context); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	descriptor, err := h.generator.Generate(c.Request.Context(), req.Prompt, req.Context)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	opened, err := h.engine.Open(descriptor)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tab": opened})
}

// OpenTab opens a tab from a caller-supplied descriptor
func (h *Handlers) OpenTab(c *gin.Context) {
	var descriptor types.TabDescriptor
	if err := c.ShouldBindJSON(&descriptor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Payload(descriptor.Payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opened, err := h.engine.Open(&descriptor)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tab": opened})
}

// GetTab returns one open tab
func (h *Handlers) GetTab(c *gin.Context) {
	tabID := c.Param("id")
	if !id.IsValidWithPrefix(tabID, id.TabPrefix) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tab id"})
		return
	}

	opened, ok := h.engine.Get(tabID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tab not found"})
		return
	}

	response := gin.H{"tab": opened}
	if state, ok := h.engine.State(tabID); ok {
		response["state"] = state
	}
	c.JSON(http.StatusOK, response)
}

// RenderTab renders a tab to HTML
func (h *Handlers) RenderTab(c *gin.Context) {
	tabID := c.Param("id")

	el, err := h.engine.Render(c.Request.Context(), tabID)
	if err != nil {
		if errors.Is(err, tab.ErrTabNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	state, _ := h.engine.State(tabID)
	c.JSON(http.StatusOK, gin.H{
		"tab_id": tabID,
		"html":   el.HTML(),
		"state":  state,
	})
}

// RefineTab runs one refinement round for a dynamic tab
func (h *Handlers) RefineTab(c *gin.Context) {
	tabID := c.Param("id")

	var req types.RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Instruction(req.Instruction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.engine.Refine(c.Request.Context(), tabID, req.Instruction)
	switch {
	case errors.Is(err, tab.ErrTabNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, tab.ErrNotDynamic):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	turns, terr := h.engine.Turns(tabID)
	if terr != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": terr.Error()})
		return
	}

	response := gin.H{
		"tab_id":  tabID,
		"success": err == nil,
		"turns":   turns,
	}
	if err != nil {
		// Failed round: the failure turn is in the log, prior source kept
		response["error"] = err.Error()
	}
	c.JSON(http.StatusOK, response)
}

// GetTurns returns a tab's refinement log
func (h *Handlers) GetTurns(c *gin.Context) {
	tabID := c.Param("id")

	turns, err := h.engine.Turns(tabID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tab_id": tabID, "turns": turns})
}

// EvaluateNavigation runs a surface navigation attempt through the policy
func (h *Handlers) EvaluateNavigation(c *gin.Context) {
	tabID := c.Param("id")

	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	host, ok := h.engine.Surface(tabID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tab has no surface"})
		return
	}

	decision := host.EvaluateNavigation(req.URL)
	if decision == surface.DecisionCancelled && h.metrics != nil {
		h.metrics.NavigationCancelled()
	}

	c.JSON(http.StatusOK, gin.H{
		"tab_id":   tabID,
		"url":      req.URL,
		"decision": string(decision),
	})
}

// CloseTab disposes a tab
func (h *Handlers) CloseTab(c *gin.Context) {
	tabID := c.Param("id")

	if err := h.engine.Dispose(tabID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tab_id": tabID})
}

// Status returns the JSON metrics snapshot
func (h *Handlers) Status(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, gin.H{"tabs_open": h.engine.Count()})
		return
	}

	snapshot := h.metrics.GetSnapshot()
	avgDuration := 0.0
	if snapshot.RequestCount > 0 {
		avgDuration = snapshot.TotalDuration / float64(snapshot.RequestCount)
	}

	c.JSON(http.StatusOK, gin.H{
		"tabs_open":            h.engine.Count(),
		"total_requests":       snapshot.TotalRequests,
		"total_errors":         snapshot.TotalErrors,
		"avg_request_duration": avgDuration,
	})
}
