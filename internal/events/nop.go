package events

import "github.com/reviosa/riverbank-bot/internal/interfaces"

// NopPublisher drops every event. Used when no Kafka brokers are
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(topic string, event any) error { return nil }

var _ interfaces.EventPublisher = NopPublisher{}
