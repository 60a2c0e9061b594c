package events

import (
	"github.com/nats-io/nats.go"
)

// NATSBroadcaster carries the ephemeral events (presence, typing) that need
// cross-instance fan-out but no durability.
type NATSBroadcaster struct {
	nc *nats.Conn
}

func NewNATSBroadcaster(url string) (*NATSBroadcaster, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATSBroadcaster{nc: nc}, nil
}

func (b *NATSBroadcaster) Publish(subject string, data []byte) error {
	if b == nil || b.nc == nil {
		return nil
	}
	return b.nc.Publish(subject, data)
}

func (b *NATSBroadcaster) Close() {
	if b != nil && b.nc != nil {
		b.nc.Close()
	}
}
