// Package events publishes session changes to Kafka so other services can
// follow logins, profile edits and logouts.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/session"
)

// Message is the JSON value of every record; the key is the username.
type Message struct {
	Type     string          `json:"type"`
	Username string          `json:"username"`
	At       time.Time       `json:"at"`
	Session  *models.Session `json:"session,omitempty"`
}

// Publisher is a session.Observer backed by a Kafka SyncProducer.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      logging.Logger
	now      func() time.Time
}

// NewPublisher connects to brokers.
func NewPublisher(brokers []string, topic string, log logging.Logger) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = "flowcross"
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithProducer(producer, topic, log), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, log logging.Logger) *Publisher {
	if log == nil {
		log = logging.Nop()
	}
	return &Publisher{producer: producer, topic: topic, log: log, now: time.Now}
}

// Observe sends ev. Failures are logged and never reach the user action that
// caused the change.
func (p *Publisher) Observe(ctx context.Context, ev session.Event) {
	data, err := json.Marshal(Message{
		Type:     string(ev.Kind),
		Username: ev.Username,
		At:       p.now().UTC(),
		Session:  outbound(ev.Session),
	})
	if err != nil {
		p.log.Error(ctx, "encode session event", "error", err)
		return
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Username),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		p.log.Warn(ctx, "publish session event failed", "type", string(ev.Kind), "username", ev.Username, "error", err)
		return
	}
	p.log.Debug(ctx, "session event published", "type", string(ev.Kind), "partition", partition, "offset", offset)
}

// outbound strips what consumers must not receive: the avatar, which may be
// a multi-megabyte data URI, and the verification values. The channel flags
// are kept.
func outbound(s *models.Session) *models.Session {
	c := s.Clone()
	if c == nil {
		return nil
	}
	c.Avatar = ""
	if c.Verification != nil {
		c.Verification.PhoneNumber = ""
		c.Verification.FlowIDValue = ""
	}
	return c
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
