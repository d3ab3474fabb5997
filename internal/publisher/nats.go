package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"citymove/internal/domain/entities"
	"citymove/internal/geo"
)

// VehicleMessage is the JSON payload published for every vehicle update.
type VehicleMessage struct {
	Vehicle     entities.Vehicle `json:"vehicle"`
	Geohash     string           `json:"geohash"`
	PublishedAt time.Time        `json:"published_at"`
}

// NATSClient publishes vehicle updates to, and consumes them from, subjects
// of the form <prefix>.<category>.<geohash>.
type NATSClient struct {
	nc        *nats.Conn
	prefix    string
	precision int
	logger    *slog.Logger
}

func NewNATSClient(url, prefix string, precision int, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.Name("citymove"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSClient{nc: nc, prefix: prefix, precision: precision, logger: logger}, nil
}

func (c *NATSClient) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
		c.nc.Close()
	}
}

func (c *NATSClient) Name() string { return "nats" }

// PublishVehicle publishes v on its category/geohash subject.
func (c *NATSClient) PublishVehicle(ctx context.Context, v entities.Vehicle) error {
	msg := NewVehicleMessage(v, c.precision)
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	subject := Subject(c.prefix, v.Category, msg.Geohash)
	c.logger.Debug("nats publish", "subject", subject)
	return c.nc.Publish(subject, b)
}

// Run subscribes to every vehicle subject under the prefix and hands decoded
// vehicles to handle until ctx is done. Undecodable messages are logged and
// skipped.
func (c *NATSClient) Run(ctx context.Context, handle func(entities.Vehicle)) error {
	msgs := make(chan *nats.Msg, 256)
	sub, err := c.nc.ChanSubscribe(c.prefix+".>", msgs)
	if err != nil {
		return fmt.Errorf("subscribe %s.>: %w", c.prefix, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	for {
		select {
		case m := <-msgs:
			var vm VehicleMessage
			if err := json.Unmarshal(m.Data, &vm); err != nil {
				c.logger.Warn("dropping undecodable vehicle message", "subject", m.Subject, "error", err)
				continue
			}
			handle(vm.Vehicle)
		case <-ctx.Done():
			return nil
		}
	}
}

// NewVehicleMessage wraps v with its geohash at the given precision.
func NewVehicleMessage(v entities.Vehicle, precision int) VehicleMessage {
	return VehicleMessage{
		Vehicle:     v,
		Geohash:     geo.EncodeLocation(v.Position, precision),
		PublishedAt: time.Now().UTC(),
	}
}

// Subject builds <prefix>.<category>.<geohash>. Subscribers can narrow with
// wildcards, e.g. "citymove.vehicles.bus.>" or "citymove.vehicles.*.tdr1v".
func Subject(prefix string, category entities.Category, geohash string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, subjectToken(string(category)), subjectToken(geohash))
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
