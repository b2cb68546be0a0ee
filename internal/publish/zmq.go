// Package publish sends recognized gestures to other processes over ZeroMQ.
package publish

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/pebbe/zmq4"

	"github.com/ayusman/wavecam/internal/gesture"
)

// TopicPrefix starts every topic frame. Subscribers can filter on
// "gesture." for everything or "gesture.up" for one direction.
const TopicPrefix = "gesture."

// Topic returns the topic frame for a direction.
func Topic(d gesture.Direction) string {
	return TopicPrefix + string(d)
}

// Encode returns the two frames published for ev: the topic and the CBOR
// encoded gesture.Message.
func Encode(ev gesture.Event, t time.Time) (string, []byte, error) {
	payload, err := cbor.Marshal(gesture.NewMessage(ev, t))
	if err != nil {
		return "", nil, fmt.Errorf("encode gesture: %w", err)
	}
	return Topic(ev.Direction), payload, nil
}

// Publisher is a ZeroMQ PUB socket that implements gesture.Sink.
type Publisher struct {
	socket   *zmq4.Socket
	endpoint string
	mu       sync.Mutex
	now      func() time.Time
}

// NewPublisher binds a PUB socket to endpoint, for example "tcp://*:5556".
func NewPublisher(endpoint string) (*Publisher, error) {
	socket, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, err
	}
	if err := socket.SetLinger(0); err != nil {
		_ = socket.Close()
		return nil, err
	}
	if err := socket.Bind(endpoint); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("bind %s: %w", endpoint, err)
	}

	return &Publisher{socket: socket, endpoint: endpoint, now: time.Now}, nil
}

// Endpoint returns the address the socket is bound to.
func (p *Publisher) Endpoint() string {
	return p.endpoint
}

// Emit publishes ev. Send failures are logged; PUB sockets drop messages
// for slow or absent subscribers anyway.
func (p *Publisher) Emit(ev gesture.Event) {
	topic, payload, err := Encode(ev, p.now())
	if err != nil {
		log.Printf("publish: %v", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.socket == nil {
		return
	}
	if _, err := p.socket.SendMessage(topic, payload); err != nil {
		log.Printf("publish %s: %v", topic, err)
	}
}

// Close releases the socket. Later calls to Emit do nothing.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.socket == nil {
		return nil
	}
	err := p.socket.Close()
	p.socket = nil
	return err
}
