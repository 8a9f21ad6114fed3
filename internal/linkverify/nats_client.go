package linkverify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// BrokenLinkEvent is published for every relative link whose target is not in
// the output plan.
type BrokenLinkEvent struct {
	BuildID     string    `json:"build_id"`
	Doc         string    `json:"doc"`
	Destination string    `json:"destination"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher delivers broken-link events to an external consumer.
type Publisher interface {
	PublishBrokenLink(event *BrokenLinkEvent) error
	Close()
}

// NATSPublisher publishes broken-link events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS for broken-link event publishing.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("refdocs-linkverify"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS publisher initialized for link verification", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishBrokenLink implements Publisher.
func (p *NATSPublisher) PublishBrokenLink(event *BrokenLinkEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal broken-link event: %w", err)
	}
	return p.conn.Publish(p.subject, data)
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
