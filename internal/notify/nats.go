// Package notify publishes build events to NATS so downstream consumers
// (cache purgers, deploy hooks) can react to site rebuilds.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/inkpress/internal/config"
)

// BuildEvent is the payload published after every daemon build.
type BuildEvent struct {
	BuildID  string    `json:"build_id"`
	Outcome  string    `json:"outcome"`
	Pages    int       `json:"pages"`
	Failures int       `json:"failures"`
	Finished time.Time `json:"finished"`
}

// Notifier publishes build events to a NATS subject.
type Notifier struct {
	conn    *nats.Conn
	subject string
}

// NewNotifier connects to NATS per the notify configuration. Returns an error
// when notifications are disabled; callers gate on cfg.Enabled.
func NewNotifier(cfg *config.NotifyConfig) (*Notifier, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("build notifications are disabled")
	}

	conn, err := nats.Connect(cfg.NATSURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	slog.Info("NATS notifier initialized", "url", cfg.NATSURL, "subject", cfg.Subject)
	return &Notifier{conn: conn, subject: cfg.Subject}, nil
}

// Publish sends a build event. Failures are returned, not fatal; the daemon
// logs and continues.
func (n *Notifier) Publish(event BuildEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (n *Notifier) Close() {
	if n.conn != nil {
		_ = n.conn.Drain()
	}
}
