package domain

import "context"

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/notifier_mock.go -package=mocks . Notifier

// Notifier delivers meeting confirmations over one channel.
type Notifier interface {
	// Name identifies the channel in logs, metrics and dedupe keys.
	Name() string
	Notify(ctx context.Context, confirmation Confirmation) error
}

// DeliveryLog remembers which confirmations were already delivered.
type DeliveryLog interface {
	// Claim records key and reports whether it was new.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a failed delivery can be retried.
	Release(ctx context.Context, key string) error
}
