package pubsub

import "context"

// ClosingValue - Sent over a subscribe channel when its closing
const ClosingValue = "<<CLOSING>>"

// FlagsTopic - Receives the flag ID whenever a flag is appended to the ledger, so reviewer
// tooling can refresh.
const FlagsTopic = "flags"

type Client interface {
	Close() error

	Publish(ctx context.Context, topic string, val string) error
	Subscribe(ctx context.Context, topic string) (<-chan string, error)
	Unsubscribe(ctx context.Context, ch <-chan string) error
}
