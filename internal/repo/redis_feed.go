package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/prajyotrote/coaching-os-sub000/internal/platform/logger"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisFeed publishes changes on a redis pub/sub channel so other processes
// can follow them. Local subscribers only see changes after Start.
type RedisFeed struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	local   *LocalFeed
}

func NewRedisFeed(ctx context.Context, log *logger.Logger, opts RedisOptions) (*RedisFeed, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	channel := strings.TrimSpace(opts.Channel)
	if channel == "" {
		channel = "coach:changes"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisFeed{
		log:     log.With("service", "RedisFeed"),
		rdb:     rdb,
		channel: channel,
		local:   NewLocalFeed(),
	}, nil
}

func (f *RedisFeed) Publish(ctx context.Context, c Change) error {
	raw, err := encodeChange(c)
	if err != nil {
		return err
	}
	if err := f.rdb.Publish(ctx, f.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(table Table, onChange func(Change)) func() {
	return f.local.Subscribe(table, onChange)
}

// Start forwards channel messages to local subscribers until ctx is done.
func (f *RedisFeed) Start(ctx context.Context) error {
	sub := f.rdb.Subscribe(ctx, f.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				c, err := decodeChange([]byte(m.Payload))
				if err != nil {
					f.log.Warn("bad change payload", "error", err)
					continue
				}
				f.local.deliver(c)
			}
		}
	}()
	return nil
}

func (f *RedisFeed) Close() error {
	return f.rdb.Close()
}

func encodeChange(c Change) ([]byte, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}
	return raw, nil
}

func decodeChange(raw []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(raw, &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if _, err := ParseTable(string(c.Table)); err != nil {
		return Change{}, err
	}
	return c, nil
}

var (
	_ Feed = (*RedisFeed)(nil)
	_ Feed = (*LocalFeed)(nil)
)
