package interfaces

// EventPublisher receives audit events for successful ledger
// mutations. Publishing is best effort; failures are logged by the
// caller and never block the mutation itself.
type EventPublisher interface {
	Publish(topic string, event any) error
}
