package logging_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"rescue-sim/server/logging"
	"rescue-sim/server/logging/sinks"
)

func fixedClock() logging.Clock {
	return logging.ClockFunc(func() time.Time { return time.Unix(1700000000, 0).UTC() })
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, router.Close(ctx))
}

func TestRouterDeliversToSinks(t *testing.T) {
	defer goleak.VerifyNone(t)

	memory := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"service": "rescue-sim"}
	router, err := logging.NewRouter(fixedClock(), cfg, []logging.NamedSink{{Name: logging.SinkMemory, Sink: memory}}, nil)
	require.NoError(t, err)

	router.Publish(context.Background(), logging.Event{Type: "rescue.victim_picked_up", Tick: 3, Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "rescue.npc_retargeted", Tick: 3, Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Tick: 4})
	closeRouter(t, router)

	events := memory.Events()
	require.Len(t, events, 1, "debug and untyped events are filtered")
	event := events[0]
	assert.Equal(t, logging.EventType("rescue.victim_picked_up"), event.Type)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), event.Time)
	assert.Equal(t, "rescue-sim", event.Extra["service"])
	assert.NotEmpty(t, event.TraceID)
	assert.Equal(t, uint64(1), router.Stats().EventsTotal)
	assert.Same(t, memory, router.Sink(logging.SinkMemory))
	assert.Nil(t, router.Sink("missing"))
}

func TestRouterIgnoresPublishAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{{Name: "memory", Sink: memory}}, nil)
	require.NoError(t, err)
	closeRouter(t, router)

	router.Publish(context.Background(), logging.Event{Type: "late", Severity: logging.SeverityError})
	assert.Empty(t, memory.Events())
	assert.NoError(t, router.Close(context.Background()), "second close is a no-op")
}

type failingSink struct {
	writes atomic.Int32
}

func (s *failingSink) Write(logging.Event) error {
	s.writes.Add(1)
	return errors.New("disk full")
}

func (s *failingSink) Close(context.Context) error { return nil }

func TestRouterReportsSinkFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zap.WarnLevel)
	sink := &failingSink{}
	router, err := logging.NewRouter(fixedClock(), logging.DefaultConfig(), []logging.NamedSink{{Name: "broken", Sink: sink}}, zap.New(core))
	require.NoError(t, err)

	router.Publish(context.Background(), logging.Event{Type: "rescue.all_rescued", Severity: logging.SeverityInfo})
	require.Eventually(t, func() bool { return sink.writes.Load() == 1 }, time.Second, time.Millisecond)
	closeRouter(t, router)

	failures := logs.FilterMessage("sink failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "broken", failures[0].ContextMap()["sink"])
}

func TestWithFieldsDecoratesEvents(t *testing.T) {
	var got logging.Event
	pub := logging.WithFields(logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		got = event
	}), map[string]any{"scenario": "rescue"})

	pub.Publish(context.Background(), logging.Event{Type: "x", Extra: map[string]any{"scenario": "override"}})
	assert.Equal(t, "override", got.Extra["scenario"])

	pub.Publish(context.Background(), logging.Event{Type: "y"})
	assert.Equal(t, "rescue", got.Extra["scenario"])

	original := logging.Event{Type: "z", Extra: map[string]any{"hops": 3}}
	pub.Publish(context.Background(), original)
	assert.Equal(t, "rescue", got.Extra["scenario"])
	assert.NotContains(t, original.Extra, "scenario")
}

func TestParseSeverity(t *testing.T) {
	sev, err := logging.ParseSeverity("WARN")
	require.NoError(t, err)
	assert.Equal(t, logging.SeverityWarn, sev)
	assert.Equal(t, "warn", sev.String())

	_, err = logging.ParseSeverity("loud")
	assert.Error(t, err)
}
