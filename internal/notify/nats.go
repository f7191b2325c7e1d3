package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/nats-io/nats.go"
)

// NATSDispatcher publishes notifications as JSON on a NATS subject,
// so other hosts (e.g. a desktop companion) can surface them.
type NATSDispatcher struct {
	nc      *nats.Conn
	subject string
	logger  hclog.Logger
}

// NewNATSDispatcher connects to the NATS server at natsURL.
func NewNATSDispatcher(logger hclog.Logger, natsURL string, subject string) (*NATSDispatcher, error) {
	natsURL = strings.TrimSpace(natsURL)
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL cannot be empty")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("NATS subject cannot be empty")
	}

	logger = logger.Named("nats")

	nc, err := nats.Connect(natsURL,
		nats.Name("steamstat"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("Connected to NATS", "url", natsURL, "subject", subject)

	return &NATSDispatcher{
		nc:      nc,
		subject: subject,
		logger:  logger,
	}, nil
}

// Dispatch publishes n. Publishing is buffered by the client and does not wait for delivery.
func (d *NATSDispatcher) Dispatch(_ context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := d.nc.Publish(d.subject, data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	d.logger.Debug("Notification published", "subject", d.subject, "id", n.ID, "size", len(data))

	return nil
}

// Close drains pending publishes and closes the connection.
func (d *NATSDispatcher) Close() error {
	if d.nc == nil {
		return nil
	}

	d.logger.Info("Closing NATS connection")

	return d.nc.Drain()
}
