// Description:
//
// Publishes packer stage-progress events over a ZeroMQ PUB socket, using
// the same JSON-envelope-over-ZMQ shape the device-under-test channel uses
// for its event messages, adapted from a request/reply exchange to a
// fire-and-forget broadcast since progress reporting has no caller waiting
// on a reply.

package telemetry

import (
	"encoding/json"
	"fmt"

	zmq "github.com/pebbe/zmq4"
)

// Event is one stage-progress message, mirroring the evt_name/args envelope
// shape of the device-under-test's JSON messages.
type Event struct {
	Stage   string `json:"stage"`
	EvtName string `json:"evt_name"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	NCells  int    `json:"n_cells"`
	NNets   int    `json:"n_nets"`
}

// Publisher wraps a ZMQ PUB socket bound to an endpoint; every call to
// Publish sends one JSON-encoded Event. Unlike the device-under-test's REQ
// socket, a PUB socket never blocks waiting for a subscriber, so a caller
// with nothing listening incurs no cost beyond the encode.
type Publisher struct {
	endpoint string
	sock     *zmq.Socket
}

// NewPublisher creates and binds a PUB socket at endpoint (e.g.
// "tcp://*:5556").
func NewPublisher(endpoint string) (*Publisher, error) {
	sock, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return nil, fmt.Errorf("telemetry: could not create socket: %w", err)
	}
	if err := sock.Bind(endpoint); err != nil {
		return nil, fmt.Errorf("telemetry: could not bind %s: %w", endpoint, err)
	}
	return &Publisher{endpoint: endpoint, sock: sock}, nil
}

// Publish sends a stage-progress event. Errors are returned rather than
// fatal, since a telemetry hiccup should never abort a pack run.
func (p *Publisher) Publish(evt Event) error {
	if p == nil || p.sock == nil {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("telemetry: failed to encode event: %w", err)
	}
	if _, err := p.sock.SendBytes(data, 0); err != nil {
		return fmt.Errorf("telemetry: failed to publish event: %w", err)
	}
	return nil
}

// Close releases the underlying socket.
func (p *Publisher) Close() error {
	if p == nil || p.sock == nil {
		return nil
	}
	return p.sock.Close()
}
