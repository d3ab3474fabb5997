package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"citymove/internal/domain/entities"
)

// ChangeFeed listens on ChangeChannel with a dedicated pgx connection and
// hands each changed vehicle row to the caller. It reconnects with a fixed
// backoff when the connection drops.
type ChangeFeed struct {
	dsn     string
	logger  *slog.Logger
	backoff time.Duration
}

func NewChangeFeed(dsn string, logger *slog.Logger) *ChangeFeed {
	return &ChangeFeed{dsn: dsn, logger: logger, backoff: 2 * time.Second}
}

func (f *ChangeFeed) Name() string { return "postgres" }

// Run blocks until ctx is done.
func (f *ChangeFeed) Run(ctx context.Context, handle func(entities.Vehicle)) error {
	for {
		err := f.listen(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		f.logger.Warn("vehicle change feed interrupted", "error", err, "retry_in", f.backoff)
		select {
		case <-time.After(f.backoff):
		case <-ctx.Done():
			return nil
		}
	}
}

func (f *ChangeFeed) listen(ctx context.Context, handle func(entities.Vehicle)) error {
	conn, err := pgx.Connect(ctx, f.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	f.logger.Info("listening for vehicle changes", "channel", ChangeChannel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		v, err := DecodeChange([]byte(n.Payload))
		if err != nil {
			f.logger.Warn("dropping undecodable vehicle change", "error", err)
			continue
		}
		handle(*v)
	}
}

// DecodeChange parses a row_to_json payload from the vehicles trigger.
func DecodeChange(payload []byte) (*entities.Vehicle, error) {
	var v entities.Vehicle
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	if v.ID == "" {
		return nil, errors.New("change payload has no id")
	}
	return &v, nil
}
