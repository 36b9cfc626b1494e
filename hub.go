package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"rescue-sim/server/internal/net/intake"
	"rescue-sim/server/internal/net/proto"
	"rescue-sim/server/internal/sim"
	"rescue-sim/server/logging"
	lifecyclelog "rescue-sim/server/logging/lifecycle"
	networklog "rescue-sim/server/logging/network"
)

// ErrHubClosed is returned by Subscribe after Close.
var ErrHubClosed = errors.New("hub closed")

// Engine is the part of the simulation loop the hub talks to.
type Engine interface {
	Enqueue(sim.Command) (bool, string)
	Tick() uint64
	Layout() sim.WorldLayout
	Snapshot() sim.Snapshot
}

// Conn is the websocket surface a subscriber writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type HubConfig struct {
	Logger       *zap.Logger
	Publisher    logging.Publisher
	Metrics      *logging.Metrics
	CommandRate  rate.Limit
	CommandBurst int
	Now          func() time.Time
}

// Hub fans simulation frames out to websocket subscribers and turns their
// messages into queued commands.
type Hub struct {
	engine    Engine
	logger    *zap.Logger
	publisher logging.Publisher
	metrics   *logging.Metrics
	rate      rate.Limit
	burst     int
	now       func() time.Time

	mu          sync.Mutex
	subscribers map[string]*Subscriber
	closed      bool
}

// Subscriber is a single websocket viewer.
type Subscriber struct {
	ID         string
	Format     proto.Format
	RemoteAddr string
	JoinedAt   time.Time

	conn    Conn
	writeMu sync.Mutex
	limiter *rate.Limiter

	lastCommandSeq atomic.Uint64
	lastHeartbeat  atomic.Int64
	rttMillis      atomic.Int64
}

func NewHub(engine Engine, cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	limit := cfg.CommandRate
	if limit <= 0 {
		limit = DefaultCommandRate
	}
	burst := cfg.CommandBurst
	if burst <= 0 {
		burst = DefaultCommandBurst
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Hub{
		engine:      engine,
		logger:      logger.Named("hub"),
		publisher:   publisher,
		metrics:     cfg.Metrics,
		rate:        limit,
		burst:       burst,
		now:         now,
		subscribers: make(map[string]*Subscriber),
	}
}

// WriteMessage writes a frame under the subscriber's write lock with the
// standard deadline applied.
func (s *Subscriber) WriteMessage(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

func (s *Subscriber) LastCommandSeq() uint64 {
	return s.lastCommandSeq.Load()
}

func (s *Subscriber) StoreLastCommandSeq(seq uint64) {
	for {
		current := s.lastCommandSeq.Load()
		if seq <= current || s.lastCommandSeq.CompareAndSwap(current, seq) {
			return
		}
	}
}

func (s *Subscriber) entityRef() logging.EntityRef {
	return logging.EntityRef{ID: s.ID, Kind: logging.EntityKindPlayer}
}

// Subscribe registers conn and sends it the world layout followed by the
// latest state so the viewer can draw immediately.
func (h *Hub) Subscribe(ctx context.Context, conn Conn, format proto.Format, remoteAddr string) (*Subscriber, error) {
	sub := &Subscriber{
		ID:         uuid.NewString(),
		Format:     format,
		RemoteAddr: remoteAddr,
		JoinedAt:   h.now(),
		conn:       conn,
		limiter:    rate.NewLimiter(h.rate, h.burst),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.mu.Unlock()

	if err := h.send(sub, proto.NewWorldMessage(sub.ID, h.engine.Layout())); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send world frame: %w", err)
	}
	if err := h.send(sub, proto.NewStateMessage(h.engine.Snapshot(), h.now())); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send initial state: %w", err)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil, ErrHubClosed
	}
	h.subscribers[sub.ID] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	h.storeMetric(metricSubscribers, uint64(count))
	h.logger.Debug("subscriber joined", zap.String("id", sub.ID), zap.String("format", string(format)))
	lifecyclelog.SubscriberJoined(ctx, h.publisher, h.engine.Tick(), sub.entityRef(), lifecyclelog.SubscriberJoinedPayload{
		Format:     string(format),
		RemoteAddr: remoteAddr,
	}, nil)
	return sub, nil
}

// Disconnect drops the subscriber and closes its connection. It reports
// whether the subscriber was still registered.
func (h *Hub) Disconnect(ctx context.Context, id, reason string) bool {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	count := len(h.subscribers)
	h.mu.Unlock()
	if !ok {
		return false
	}

	sub.conn.Close()
	h.storeMetric(metricSubscribers, uint64(count))
	h.logger.Debug("subscriber left", zap.String("id", id), zap.String("reason", reason))
	lifecyclelog.SubscriberLeft(ctx, h.publisher, h.engine.Tick(), sub.entityRef(), lifecyclelog.SubscriberLeftPayload{Reason: reason}, nil)
	return true
}

// HandleClientMessage processes one inbound payload. A non-nil error means
// the reply could not be written and the subscriber has been disconnected.
func (h *Hub) HandleClientMessage(ctx context.Context, sub *Subscriber, payload []byte) error {
	msg, err := proto.DecodeClientMessage(payload)
	if err != nil {
		h.addMetric(metricMalformedMessages, 1)
		h.logger.Debug("discarding malformed message", zap.String("id", sub.ID), zap.Error(err))
		return nil
	}

	if msg.Type == proto.TypeHeartbeat {
		now := h.now()
		reply := proto.NewHeartbeat(now, msg.SentAt)
		sub.lastHeartbeat.Store(now.UnixMilli())
		sub.rttMillis.Store(reply.RTTMillis)
		return h.reply(ctx, sub, reply)
	}

	seq := msg.Seq()
	if seq > 0 {
		if last := sub.LastCommandSeq(); last > 0 && seq <= last {
			return h.reply(ctx, sub, proto.NewCommandAck(seq, 0))
		}
	}

	if !sub.limiter.Allow() {
		return h.reject(ctx, sub, msg, CommandRejectRateLimited)
	}

	cmd, ok, reason := intake.StageClientCommand(intake.CommandContext{
		Engine: h.engine,
		Tick:   h.engine.Tick,
		Now:    h.now,
	}, sub.ID, msg)
	if !ok {
		return h.reject(ctx, sub, msg, reason)
	}

	h.addMetric(metricCommandsAccepted, 1)
	if seq == 0 {
		return nil
	}
	if err := h.reply(ctx, sub, proto.NewCommandAck(seq, cmd.OriginTick)); err != nil {
		return err
	}
	sub.StoreLastCommandSeq(seq)
	return nil
}

func (h *Hub) reject(ctx context.Context, sub *Subscriber, msg proto.ClientMessage, reason string) error {
	seq := msg.Seq()
	h.addMetric(metricCommandsRejected, 1)
	networklog.CommandRejected(ctx, h.publisher, h.engine.Tick(), sub.entityRef(), networklog.CommandRejectedPayload{
		Command: msg.Type,
		Reason:  reason,
		Seq:     seq,
	}, nil)
	if seq == 0 {
		return nil
	}
	return h.reply(ctx, sub, proto.NewCommandReject(seq, reason, retryable(reason)))
}

func retryable(reason string) bool {
	switch reason {
	case sim.CommandRejectQueueLimit, sim.CommandRejectQueueFull, CommandRejectRateLimited:
		return true
	default:
		return false
	}
}

func (h *Hub) reply(ctx context.Context, sub *Subscriber, msg any) error {
	if err := h.send(sub, msg); err != nil {
		h.Disconnect(ctx, sub.ID, DisconnectReasonWriteFailed)
		return err
	}
	return nil
}

func (h *Hub) send(sub *Subscriber, msg any) error {
	data, err := proto.Encode(sub.Format, msg)
	if err != nil {
		return err
	}
	if err := sub.WriteMessage(frameType(sub.Format), data); err != nil {
		return err
	}
	h.addMetric(metricFramesSent, 1)
	h.addMetric(metricBytesSent, uint64(len(data)))
	return nil
}

func frameType(format proto.Format) int {
	if format == proto.FormatProto {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Broadcast sends one state frame for the step to every subscriber. Frames
// are encoded once per format. It is shaped to serve as a loop AfterStep hook.
func (h *Hub) Broadcast(ctx context.Context, result sim.LoopStepResult) {
	subs := h.snapshotSubscribers()
	if len(subs) == 0 {
		return
	}

	msg := proto.NewStateMessage(result.Snapshot, result.Now)
	encoded := make(map[proto.Format][]byte, 2)
	var failed []string
	for _, sub := range subs {
		data, ok := encoded[sub.Format]
		if !ok {
			var err error
			data, err = proto.Encode(sub.Format, msg)
			if err != nil {
				h.logger.Error("failed to encode state frame", zap.String("format", string(sub.Format)), zap.Error(err))
				return
			}
			encoded[sub.Format] = data
		}
		if err := sub.WriteMessage(frameType(sub.Format), data); err != nil {
			h.logger.Debug("state write failed", zap.String("id", sub.ID), zap.Error(err))
			failed = append(failed, sub.ID)
			continue
		}
		h.addMetric(metricFramesSent, 1)
		h.addMetric(metricBytesSent, uint64(len(data)))
	}

	for _, id := range failed {
		h.Disconnect(ctx, id, DisconnectReasonWriteFailed)
	}
}

func (h *Hub) snapshotSubscribers() []*Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Diagnostics lists subscribers ordered by join time.
func (h *Hub) Diagnostics() []SubscriberDiagnostics {
	subs := h.snapshotSubscribers()
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].JoinedAt.Equal(subs[j].JoinedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].JoinedAt.Before(subs[j].JoinedAt)
	})
	out := make([]SubscriberDiagnostics, 0, len(subs))
	for _, sub := range subs {
		out = append(out, SubscriberDiagnostics{
			ID:             sub.ID,
			Format:         string(sub.Format),
			RemoteAddr:     sub.RemoteAddr,
			JoinedAt:       sub.JoinedAt.UnixMilli(),
			LastHeartbeat:  sub.lastHeartbeat.Load(),
			RTTMillis:      sub.rttMillis.Load(),
			LastCommandSeq: sub.LastCommandSeq(),
		})
	}
	return out
}

// Close sends a going-away frame to every subscriber and refuses new ones.
func (h *Hub) Close(ctx context.Context) {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	closing := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, sub := range h.snapshotSubscribers() {
		sub.WriteMessage(websocket.CloseMessage, closing)
		h.Disconnect(ctx, sub.ID, DisconnectReasonShutdown)
	}
}

func (h *Hub) addMetric(key string, delta uint64) {
	if h.metrics != nil {
		h.metrics.TelemetryAdd(key, delta)
	}
}

func (h *Hub) storeMetric(key string, value uint64) {
	if h.metrics != nil {
		h.metrics.TelemetryStore(key, value)
	}
}
