package net

import (
	nethttp "net/http"
	"net/http/pprof"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"rescue-sim/server"
	"rescue-sim/server/internal/net/ws"
	"rescue-sim/server/internal/observability"
	"rescue-sim/server/internal/sim"
	"rescue-sim/server/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Simulation is the loop surface the HTTP routes read from. *sim.Loop
// satisfies it.
type Simulation interface {
	server.Engine
	Scenario() string
	Config() sim.LoopConfig
	Pending() int
	Done() bool
}

type HTTPHandlerConfig struct {
	ClientDir     string
	Logger        *zap.Logger
	Observability observability.Config
	RouterStats   func() logging.RouterStats
	Metrics       *logging.Metrics
	Now           func() time.Time
}

// resetActorID tags reset commands issued over HTTP.
const resetActorID = "http"

func NewHTTPHandler(hub *server.Hub, simulation Simulation, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		snapshot := simulation.Snapshot()
		payload := struct {
			Status          string                         `json:"status"`
			ServerTime      int64                          `json:"serverTime"`
			Scenario        string                         `json:"scenario"`
			Tick            uint64                         `json:"tick"`
			TickIntervalMs  int64                          `json:"tickIntervalMillis"`
			PendingCommands int                            `json:"pendingCommands"`
			Done            bool                           `json:"done"`
			Rescued         int                            `json:"rescued"`
			Remaining       int                            `json:"remaining"`
			SubscriberCount int                            `json:"subscriberCount"`
			Subscribers     []server.SubscriberDiagnostics `json:"subscribers"`
			Router          *logging.RouterStats           `json:"router,omitempty"`
			Metrics         map[string]uint64              `json:"metrics"`
		}{
			Status:          "ok",
			ServerTime:      now().UnixMilli(),
			Scenario:        simulation.Scenario(),
			Tick:            simulation.Tick(),
			TickIntervalMs:  simulation.Config().TickInterval.Milliseconds(),
			PendingCommands: simulation.Pending(),
			Done:            simulation.Done(),
			Rescued:         snapshot.Rescued,
			Remaining:       snapshot.Remaining,
			SubscriberCount: hub.SubscriberCount(),
			Subscribers:     hub.Diagnostics(),
			Metrics:         cfg.Metrics.Snapshot(),
		}
		if cfg.RouterStats != nil {
			stats := cfg.RouterStats()
			payload.Router = &stats
		}
		writeJSON(w, logger, nethttp.StatusOK, payload)
	})

	mux.HandleFunc("/world/layout", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, logger, nethttp.StatusOK, simulation.Layout())
	})

	mux.HandleFunc("/world/reset", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		cmd := sim.Command{
			Type:       sim.CommandReset,
			ActorID:    resetActorID,
			OriginTick: simulation.Tick(),
			IssuedAt:   now(),
		}
		if ok, reason := simulation.Enqueue(cmd); !ok {
			logger.Warn("reset rejected", zap.String("reason", reason))
			writeJSON(w, logger, nethttp.StatusServiceUnavailable, map[string]string{
				"status": "rejected",
				"reason": reason,
			})
			return
		}
		writeJSON(w, logger, nethttp.StatusAccepted, map[string]any{
			"status": "queued",
			"tick":   cmd.OriginTick,
		})
	})

	mux.Handle("/ws", ws.NewHandler(hub, ws.HandlerConfig{Logger: logger}))

	if cfg.Observability.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, logger *zap.Logger, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to encode response", zap.Error(err))
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
