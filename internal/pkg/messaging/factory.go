package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Supported values for the messaging.driver setting.
const (
	DriverNone         = ""
	DriverMemory       = "memory"
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries per-backend settings. Only the block matching the
// selected driver is read.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

type constructor func(ctx context.Context, opts FactoryOptions) (Publisher, error)

var drivers = map[string]constructor{
	DriverNone:   func(context.Context, FactoryOptions) (Publisher, error) { return NewNoop(), nil },
	DriverMemory: func(context.Context, FactoryOptions) (Publisher, error) { return NewMemory(), nil },
	DriverNSQ:    func(_ context.Context, o FactoryOptions) (Publisher, error) { return NewNSQ(o.NSQ) },
	DriverNATS:   func(_ context.Context, o FactoryOptions) (Publisher, error) { return NewNATS(o.NATS) },
	DriverKafka:  func(_ context.Context, o FactoryOptions) (Publisher, error) { return NewKafka(o.Kafka) },
	DriverGooglePubSub: func(ctx context.Context, o FactoryOptions) (Publisher, error) {
		return NewPubSub(ctx, o.PubSub)
	},
}

// NormalizeDriver lowercases and trims a configured driver name. "none" is
// accepted as an alias for DriverNone.
func NormalizeDriver(driver string) string {
	d := strings.ToLower(strings.TrimSpace(driver))
	if d == "none" {
		return DriverNone
	}
	return d
}

// Drivers lists the accepted driver names, excluding DriverNone.
func Drivers() []string {
	out := make([]string, 0, len(drivers))
	for name := range drivers {
		if name != DriverNone {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// NewFromDriver constructs a Publisher implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Publisher, error) {
	newPublisher, ok := drivers[NormalizeDriver(driver)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}
	return newPublisher(ctx, opts)
}
