package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"loot/internal/platform/circuit"
	"loot/internal/platform/kafka/producer"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// InMemoryStore keeps events per token id for tests and the dev profile.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByToken returns the events recorded for one token id, oldest first.
func (s *InMemoryStore) ListByToken(_ context.Context, tokenID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.TokenID == tokenID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every recorded event, oldest first.
func (s *InMemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// Producer is the subset of the Kafka producer used by KafkaStore.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaStore publishes events as JSON records keyed by token id so all
// events for one bag land on the same partition.
type KafkaStore struct {
	producer Producer
	topic    string
}

func NewKafkaStore(p Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: p, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic:   s.topic,
		Key:     []byte(event.TokenID),
		Value:   body,
		Headers: map[string]string{"action": event.Action},
	})
}

// LogStore writes events to a structured logger. It is the last-resort sink
// when the configured one is unavailable.
type LogStore struct {
	logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) Append(ctx context.Context, event Event) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "audit event",
		slog.String("event_id", event.ID),
		slog.String("action", event.Action),
		slog.String("token_id", event.TokenID),
		slog.String("owner", event.Owner),
		slog.String("caller", event.Caller),
		slog.String("decision", event.Decision),
		slog.String("reason", event.Reason),
		slog.String("request_id", event.RequestID),
	)
	return nil
}

// FallbackStore appends to primary while its circuit is closed and diverts
// to fallback when primary fails or the circuit is open.
type FallbackStore struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackStore(primary, fallback Store, breaker *circuit.Breaker, logger *slog.Logger) *FallbackStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FallbackStore{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *FallbackStore) Append(ctx context.Context, event Event) error {
	if s.breaker.Allow() {
		err := s.primary.Append(ctx, event)
		if err == nil {
			if s.breaker.RecordSuccess() {
				s.logger.InfoContext(ctx, "audit sink recovered", "sink", s.breaker.Name())
			}
			return nil
		}
		if s.breaker.RecordFailure() {
			s.logger.WarnContext(ctx, "audit sink circuit opened", "sink", s.breaker.Name(), "error", err)
		}
	}
	return s.fallback.Append(ctx, event)
}
