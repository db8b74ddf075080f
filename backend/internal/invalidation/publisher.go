// Package invalidation publishes cache invalidation signals to NATS after a
// committed write.
package invalidation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "threads.invalidate"

// Signal is the payload published for every invalidated path.
type Signal struct {
	EventId   string    `json:"event_id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher sends invalidation signals. Without a NATS url it runs in stub
// mode and only logs.
type Publisher struct {
	nc      *nats.Conn
	subject string
	now     func() time.Time
}

// New connects to NATS. An empty url returns a stub publisher.
func New(url, subject string) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	p := &Publisher{subject: subject, now: func() time.Time { return time.Now().UTC() }}

	if url == "" {
		logger.Log.Warn("nats url not set, invalidation signals will not be published (stub mode)")
		return p, nil
	}

	nc, err := nats.Connect(url,
		nats.Name("threads-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	p.nc = nc

	logger.Log.Info("nats publisher initialised", "subject", subject)
	return p, nil
}

// Signal builds the payload for path.
func (p *Publisher) Signal(path string) Signal {
	return Signal{EventId: uuid.NewString(), Path: path, CreatedAt: p.now()}
}

// Invalidate publishes a signal for path and waits for the server to
// acknowledge it, bounded by ctx.
func (p *Publisher) Invalidate(ctx context.Context, path string) error {
	signal := p.Signal(path)
	if p.nc == nil {
		logger.Log.Debug("nats stub: skipping invalidation", "path", path, "event_id", signal.EventId)
		return nil
	}

	data, err := json.Marshal(signal)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush invalidation: %w", err)
	}

	logger.Log.Debug("invalidation published", "subject", p.subject, "path", path, "event_id", signal.EventId)
	return nil
}

// Close drains pending signals and closes the connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
