package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tabforge/tabforge/internal/domain/tab"
	"github.com/tabforge/tabforge/internal/infrastructure/logging"
	"github.com/tabforge/tabforge/internal/infrastructure/monitoring"
	"github.com/tabforge/tabforge/internal/shared/types"
	"github.com/tabforge/tabforge/internal/surface"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// inbound is the wire shape for client messages
type inbound struct {
	Type        string            `json:"type"`
	TabID       string            `json:"tab_id,omitempty"`
	Prompt      string            `json:"prompt,omitempty"`
	Instruction string            `json:"instruction,omitempty"`
	Value       interface{}       `json:"value,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
}

// Handler manages WebSocket connections
type Handler struct {
	engine    *tab.Engine
	generator tab.Generator
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(engine *tab.Engine, generator tab.Generator, logger *logging.Logger) *Handler {
	return &Handler{
		engine:    engine,
		generator: generator,
		logger:    logger.Named("ws"),
	}
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	h.logger.Info("connection opened", zap.String("conn_id", connID))

	reqCtx := c.Request.Context()

	h.send(conn, gin.H{
		"type":    "system",
		"message": "connected",
		"conn_id": connID,
	})

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("read error", zap.String("conn_id", connID), zap.Error(err))
			}
			break
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("inbound", msg.Type)
		}

		switch msg.Type {
		case surface.HeightChannel:
			h.handleSurfaceMessage(msg)
		case "generate":
			h.handleGenerate(conn, msg, reqCtx)
		case "refine":
			h.handleRefine(conn, msg, reqCtx)
		case "render":
			h.handleRender(conn, msg, reqCtx)
		case "close":
			h.handleClose(conn, msg)
		case "ping":
			h.send(conn, gin.H{"type": "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}

	h.logger.Info("connection closed", zap.String("conn_id", connID))
}

// handleSurfaceMessage forwards a size report onto the engine's single
// dispatch path. No reply: the report is fire-and-forget by design of
// the reporter script.
func (h *Handler) handleSurfaceMessage(msg inbound) {
	h.engine.Deliver(types.SurfaceMessage{
		Type:  msg.Type,
		TabID: msg.TabID,
		Value: msg.Value,
	})
}

func (h *Handler) handleGenerate(conn *websocket.Conn, msg inbound, reqCtx context.Context) {
	if msg.Prompt == "" {
		h.sendError(conn, "prompt required")
		return
	}

	ctx, cancel := context.WithTimeout(reqCtx, 2*time.Minute)
	defer cancel()

	h.send(conn, gin.H{
		"type":      "generation_start",
		"timestamp": time.Now().Unix(),
	})

	descriptor, err := h.generator.Generate(ctx, msg.Prompt, msg.Context)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	opened, err := h.engine.Open(descriptor)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.send(conn, gin.H{
		"type":      "tab_opened",
		"tab":       opened,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) handleRefine(conn *websocket.Conn, msg inbound, reqCtx context.Context) {
	if msg.TabID == "" || msg.Instruction == "" {
		h.sendError(conn, "tab_id and instruction required")
		return
	}

	ctx, cancel := context.WithTimeout(reqCtx, 2*time.Minute)
	defer cancel()

	err := h.engine.Refine(ctx, msg.TabID, msg.Instruction)
	turns, _ := h.engine.Turns(msg.TabID)

	reply := gin.H{
		"type":      "refined",
		"tab_id":    msg.TabID,
		"success":   err == nil,
		"turns":     turns,
		"timestamp": time.Now().Unix(),
	}
	if err != nil {
		reply["error"] = err.Error()
	}
	h.send(conn, reply)
}

func (h *Handler) handleRender(conn *websocket.Conn, msg inbound, reqCtx context.Context) {
	el, err := h.engine.Render(reqCtx, msg.TabID)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	state, _ := h.engine.State(msg.TabID)
	h.send(conn, gin.H{
		"type":      "rendered",
		"tab_id":    msg.TabID,
		"html":      el.HTML(),
		"state":     state,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) handleClose(conn *websocket.Conn, msg inbound) {
	err := h.engine.Dispose(msg.TabID)
	h.send(conn, gin.H{
		"type":    "closed",
		"tab_id":  msg.TabID,
		"success": err == nil,
	})
}

func (h *Handler) send(conn *websocket.Conn, data interface{}) error {
	if h.metrics != nil {
		if m, ok := data.(gin.H); ok {
			if t, ok := m["type"].(string); ok {
				h.metrics.RecordWSMessage("outbound", t)
			}
		}
	}
	return conn.WriteJSON(data)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, gin.H{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
