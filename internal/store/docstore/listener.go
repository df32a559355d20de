package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"taskboard/internal/store"
)

const maxBackoff = 30 * time.Second

// Listen relays pg_notify payloads on channel into hub until ctx ends, so
// writes committed by any process reach this process's subscriptions. It
// reconnects with backoff when the connection drops.
func Listen(ctx context.Context, dsn, channel string, hub *store.Hub, logger *slog.Logger) error {
	backoff := time.Second
	for {
		err := listenOnce(ctx, dsn, channel, hub)
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("document change feed dropped", "channel", channel, "err", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func listenOnce(ctx context.Context, dsn, channel string, hub *store.Hub) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	// anything committed while we were away
	hub.PublishAll()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		dispatch(hub, n.Payload)
	}
}

func dispatch(hub *store.Hub, payload string) {
	var changes []store.Change
	if err := json.Unmarshal([]byte(payload), &changes); err != nil {
		hub.PublishAll()
		return
	}
	hub.Publish(changes)
}
