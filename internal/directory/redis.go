// Package directory shares inline-created options, such as new associates,
// between console instances through Redis. Values are kept per option key in
// a sorted set ordered by creation, so every console lists them in the order
// they were added.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-tourforms/internal/logger"
	"github.com/goliatone/go-tourforms/pkg/options"
)

// Config addresses the Redis instance.
type Config struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// Update announces a promoted value.
type Update struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Directory implements the shared option pool.
type Directory struct {
	client *redis.Client
	prefix string
	logger logger.Logger
}

// New connects to Redis. The connection is verified lazily; call Ping to
// fail fast.
func New(cfg Config, log logger.Logger) *Directory {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	return NewWithClient(client, cfg.Prefix, log)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string, log logger.Logger) *Directory {
	if prefix == "" {
		prefix = "tourdesk"
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Directory{client: client, prefix: strings.TrimSuffix(prefix, ":"), logger: log}
}

// Ping checks connectivity.
func (d *Directory) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("directory: redis ping failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (d *Directory) Close() error {
	return d.client.Close()
}

// List returns the shared values of field in creation order.
func (d *Directory) List(ctx context.Context, field string) ([]string, error) {
	values, err := d.client.ZRange(ctx, d.key(field), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("directory: list %s: %w", field, err)
	}
	return values, nil
}

// Promote adds value to the shared pool of field. Values already present
// keep their position and are not announced again.
func (d *Directory) Promote(ctx context.Context, field, value string) error {
	clean := options.Sanitize(value)
	if clean == "" {
		return options.ErrEmptyOption
	}
	seq, err := d.client.Incr(ctx, d.prefix+":seq").Result()
	if err != nil {
		return fmt.Errorf("directory: promote %s: %w", field, err)
	}
	added, err := d.client.ZAddNX(ctx, d.key(field), redis.Z{Score: float64(seq), Member: clean}).Result()
	if err != nil {
		return fmt.Errorf("directory: promote %s: %w", field, err)
	}
	if added == 0 {
		d.logger.Debug("shared option already present", map[string]any{"field": field, "value": clean})
		return nil
	}

	payload, err := json.Marshal(Update{Field: field, Value: clean})
	if err != nil {
		return fmt.Errorf("directory: encode update: %w", err)
	}
	if err := d.client.Publish(ctx, d.channel(), payload).Err(); err != nil {
		// the value is stored; peers will see it on their next List
		d.logger.WithError(err).Warn("shared option announce failed", map[string]any{"field": field})
	}
	d.logger.Info("shared option promoted", map[string]any{"field": field, "value": clean})
	return nil
}

// Subscribe streams values promoted by any console until ctx is done.
func (d *Directory) Subscribe(ctx context.Context) (<-chan Update, error) {
	sub := d.client.Subscribe(ctx, d.channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("directory: subscribe: %w", err)
	}

	out := make(chan Update)
	go func() {
		defer close(out)
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var update Update
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					d.logger.WithError(err).Warn("malformed shared option update", nil)
					continue
				}
				select {
				case out <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (d *Directory) key(field string) string {
	return d.prefix + ":options:" + field
}

func (d *Directory) channel() string {
	return d.prefix + ":options:updates"
}
