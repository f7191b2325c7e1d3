package events

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

// Handler upgrades HTTP requests to WebSocket connections attached to a Hub.
type Handler struct {
	hub            *Hub
	logger         hclog.Logger
	allowedOrigins map[string]struct{}
	upgrader       websocket.Upgrader
}

// NewHandler creates a handler. Browser requests are accepted only from allowedOrigins,
// which may contain "*". Requests without an Origin header are always accepted.
func NewHandler(hub *Hub, allowedOrigins []string, logger hclog.Logger) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		origins[origin] = struct{}{}
	}

	h := &Handler{
		hub:            hub,
		logger:         logger.Named("events"),
		allowedOrigins: origins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}

	if _, ok := h.allowedOrigins["*"]; ok {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	_, ok := h.allowedOrigins[parsed.Scheme+"://"+parsed.Host]
	return ok
}
