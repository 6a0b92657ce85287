package events

import (
	"context"
	"errors"
)

type Subscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// PublishEnvelope marshals env once and publishes it on every resolved
// channel, returning the joined errors.
func PublishEnvelope(ctx context.Context, pub Publisher, env Envelope) error {
	payload, err := env.Marshal()
	if err != nil {
		return err
	}
	var errs []error
	for _, ch := range ResolveChannels(env) {
		if err := pub.Publish(ctx, ch, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
