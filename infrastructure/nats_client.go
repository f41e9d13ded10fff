package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// EventStreamName is the JetStream stream carrying prediction lifecycle events
const EventStreamName = "tipster_events"

const (
	eventRetention   = 7 * 24 * time.Hour
	consumerAckWait  = 30 * time.Second
	consumerAttempts = 3
)

// NATSClient implements MessageBus on top of NATS JetStream
type NATSClient struct {
	servers string

	mu   sync.RWMutex
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewNATSClient creates a client for the comma-separated server list
func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{servers: servers}
}

// Connect dials NATS and opens a JetStream context
func (c *NATSClient) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := nats.Connect(c.servers,
		nats.Name("tipster"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithError(err).Warn("Lost connection to NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("server", nc.ConnectedUrl()).Info("Reconnected to NATS")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			entry := log.WithError(err)
			if sub != nil {
				entry = entry.WithField("subject", sub.Subject)
			}
			entry.Error("Asynchronous NATS error")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", c.servers, err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open JetStream context: %w", err)
	}

	c.mu.Lock()
	c.conn, c.js = conn, js
	c.mu.Unlock()

	log.WithField("servers", c.servers).Info("Connected to NATS JetStream")
	return nil
}

func (c *NATSClient) jetStream() (nats.JetStreamContext, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.js == nil {
		return nil, fmt.Errorf("NATS client is not connected")
	}
	return c.js, nil
}

// Publish sends data to a subject and waits for the stream acknowledgement
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	ack, err := js.Publish(subject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"subject":  subject,
		"stream":   ack.Stream,
		"sequence": ack.Sequence,
	}).Debug("Event stored in JetStream")
	return nil
}

// Subscribe attaches to the durable consumer of the subject, creating it on first use.
// The consumer outlives the connection, so a restart resumes after the last acked event.
// A handler error naks the message so JetStream redelivers it, up to consumerAttempts deliveries.
func (c *NATSClient) Subscribe(subject string, handler func([]byte) error) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	durable := consumerName(subject)
	if err := ensureConsumer(js, durable, subject); err != nil {
		return err
	}

	sub, err := js.Subscribe(subject, func(msg *nats.Msg) {
		settle(msg, handler(msg.Data))
	},
		nats.Bind(EventStreamName, durable),
		nats.ManualAck(),
	)
	if err != nil {
		return fmt.Errorf("failed to bind consumer %s on %s: %w", durable, subject, err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"subject":  subject,
		"consumer": durable,
	}).Info("Consuming events")
	return nil
}

// ensureConsumer creates the durable push consumer unless the stream already has it.
// A new consumer only receives events published after its creation.
func ensureConsumer(js nats.JetStreamContext, durable, subject string) error {
	_, err := js.ConsumerInfo(EventStreamName, durable)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrConsumerNotFound) {
		return fmt.Errorf("failed to look up consumer %s: %w", durable, err)
	}

	_, err = js.AddConsumer(EventStreamName, &nats.ConsumerConfig{
		Durable:        durable,
		DeliverSubject: "_tipster.deliver." + durable,
		DeliverPolicy:  nats.DeliverNewPolicy,
		AckPolicy:      nats.AckExplicitPolicy,
		AckWait:        consumerAckWait,
		MaxDeliver:     consumerAttempts,
		FilterSubject:  subject,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", durable, err)
	}
	log.WithField("consumer", durable).Info("Durable consumer created")
	return nil
}

// settle acks a handled message or naks a failed one
func settle(msg *nats.Msg, handleErr error) {
	if handleErr != nil {
		log.WithFields(log.Fields{
			"subject": msg.Subject,
			"error":   handleErr,
		}).Error("Event handler failed, requesting redelivery")
		if err := msg.Nak(); err != nil {
			log.WithError(err).Warn("Could not nak message")
		}
		return
	}
	if err := msg.Ack(); err != nil {
		log.WithError(err).Warn("Could not ack message")
	}
}

// consumerName derives a valid durable consumer name from a subject
func consumerName(subject string) string {
	name := strings.NewReplacer(".", "_", "*", "wildcard").Replace(subject)
	return "tipster-" + name
}

// EnsureStream creates the stream for the given subjects unless it already exists
func (c *NATSClient) EnsureStream(name string, subjects []string) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	if info, err := js.StreamInfo(name); err == nil {
		log.WithFields(log.Fields{
			"stream":   name,
			"messages": info.State.Msgs,
		}).Info("Using existing event stream")
		return nil
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:        name,
		Description: "Prediction lifecycle events",
		Subjects:    subjects,
		Retention:   nats.LimitsPolicy,
		Storage:     nats.FileStorage,
		MaxAge:      eventRetention,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("failed to add stream %s: %w", name, err)
	}

	log.WithFields(log.Fields{
		"stream":   name,
		"subjects": subjects,
	}).Info("Event stream created")
	return nil
}

// Close detaches from the consumers, which stay on the server, and drains the connection
func (c *NATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.WithFields(log.Fields{
				"subject": sub.Subject,
				"error":   err,
			}).Warn("Could not unsubscribe")
		}
	}
	c.subs = nil

	if c.conn == nil {
		return nil
	}
	err := c.conn.Drain()
	c.conn, c.js = nil, nil
	if err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	log.Info("NATS connection drained")
	return nil
}
