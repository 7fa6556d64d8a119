// Package events publishes domain events for real-time consumers. Transport
// failures are logged and never surfaced to the emitting request.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Topics announced by the judging and scoring engines.
const (
	TopicVerdictReady  = "verdict_ready"
	TopicScoreUpdated  = "score_updated"
	TopicStreakUpdated = "streak_updated"
)

// Sink is the event-publishing contract handed to services. Implementations
// must be safe for concurrent use and must never block a grading request on
// transport trouble.
type Sink interface {
	Emit(ctx context.Context, topic string, payload interface{})
}

type envelope struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// NATSSink publishes events onto NATS subjects under a common base.
type NATSSink struct {
	conn   *nats.Conn
	base   string
	logger zerolog.Logger
}

// NewNATSSink constructs a sink publishing under the given subject base
// (e.g. "arena" yields subjects like "arena.verdict_ready").
func NewNATSSink(conn *nats.Conn, base string, logger zerolog.Logger) *NATSSink {
	if base == "" {
		base = "arena"
	}

	return &NATSSink{
		conn:   conn,
		base:   strings.ReplaceAll(base, ":", "."),
		logger: logger.With().Str("component", "event_sink").Logger(),
	}
}

// Emit publishes the payload as JSON. Errors are logged, not returned.
func (s *NATSSink) Emit(ctx context.Context, topic string, payload interface{}) {
	data, err := json.Marshal(envelope{Topic: topic, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("failed to encode event")
		return
	}

	if err := s.conn.Publish(s.base+"."+topic, data); err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("failed to publish event")
	}
}

// NopSink drops every event. Used in tests and when NATS is not configured.
type NopSink struct{}

// Emit discards the event.
func (NopSink) Emit(ctx context.Context, topic string, payload interface{}) {}
