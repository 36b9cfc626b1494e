package server

import (
	"time"

	"golang.org/x/time/rate"
)

const (
	ProtocolVersion = 1
	writeWait       = 10 * time.Second

	// DefaultCommandRate and DefaultCommandBurst bound how fast a single
	// subscriber may submit commands.
	DefaultCommandRate  rate.Limit = 30
	DefaultCommandBurst            = 10
)

// Rejection reason emitted when a subscriber exceeds its command budget.
const CommandRejectRateLimited = "rate_limited"

// Subscriber disconnect reasons.
const (
	DisconnectReasonClosed      = "closed"
	DisconnectReasonWriteFailed = "write_failed"
	DisconnectReasonShutdown    = "shutdown"
)

const (
	metricSubscribers       = "hub_subscribers"
	metricFramesSent        = "hub_frames_sent_total"
	metricBytesSent         = "hub_bytes_sent_total"
	metricCommandsAccepted  = "hub_commands_accepted_total"
	metricCommandsRejected  = "hub_commands_rejected_total"
	metricMalformedMessages = "hub_malformed_messages_total"
)
