package ws

import (
	"context"
	nethttp "net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rescue-sim/server"
	"rescue-sim/server/internal/net/proto"
)

const readLimit = 4096

type HandlerConfig struct {
	Logger *zap.Logger
	// AllowedOrigins restricts the Origin header. Empty accepts any origin.
	AllowedOrigins []string
}

// Handler upgrades viewers to websockets and pumps their messages into the hub.
type Handler struct {
	hub      *server.Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[r.Header.Get("Origin")]
			return ok
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger.Named("ws"),
		upgrader: upgrader,
	}
}

func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.Handle(w, r)
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	format, err := proto.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	// r.Context is cancelled once the peer goes away.
	ctx := context.WithoutCancel(r.Context())

	sub, err := h.hub.Subscribe(ctx, conn, format, r.RemoteAddr)
	if err != nil {
		h.logger.Debug("subscribe failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		message := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "unavailable")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(ctx, sub.ID, server.DisconnectReasonClosed)
			return
		}
		if err := h.hub.HandleClientMessage(ctx, sub, payload); err != nil {
			return
		}
	}
}
