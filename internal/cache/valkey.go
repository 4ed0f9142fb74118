package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/valkey-io/valkey-go"
)

// Valkey is the KV backend for running against a local valkey instance, which
// keeps cached reads warm across client restarts. Selected with --cache-addr.
type Valkey struct {
	client valkey.Client
}

// NewValkey connects to valkey at addr and verifies connectivity.
func NewValkey(addr string) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, errors.Wrap(err, "valkey: connect")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "valkey: ping")
	}
	return &Valkey{client: client}, nil
}

var _ KV = (*Valkey)(nil)

func (v *Valkey) Get(ctx context.Context, key string) (string, error) {
	res, err := v.client.Do(ctx, v.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", ErrMiss
		}
		return "", err
	}
	return res, nil
}

func (v *Valkey) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	b := v.client.B().Set().Key(key).Value(value)
	if ttl > 0 {
		return v.client.Do(ctx, b.Px(ttl).Build()).Error()
	}
	return v.client.Do(ctx, b.Build()).Error()
}

func (v *Valkey) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return v.client.Do(ctx, v.client.B().Del().Key(keys...).Build()).AsInt64()
}

func (v *Valkey) Ping(ctx context.Context) error {
	return v.client.Do(ctx, v.client.B().Ping().Build()).Error()
}

func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}
