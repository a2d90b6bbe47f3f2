package redisrepo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/pkg/errors"
)

const (
	defaultKeyPrefix   = "storefront:"
	connectPingTimeout = 5 * time.Second
)

// Repo is a redis-backed storage.Repo for deployments where the client state
// should survive the local filesystem (kiosks, shared terminals).
type Repo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration // zero means no expiry
}

// Option modifies the Repo during construction.
type Option func(*Repo)

// WithTTL sets an expiry on every stored key.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repo) {
		r.ttl = ttl
	}
}

// WithKeyPrefix overrides the default "storefront:" key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(r *Repo) {
		r.keyPrefix = prefix
	}
}

// New connects to redis using a URL of the form redis://host:port/db and
// verifies the connection with a bounded ping.
func New(redisURL string, options ...Option) (*Repo, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "[redisrepo.New] redis.ParseURL")
	}

	r := &Repo{
		client:    redis.NewClient(opt),
		keyPrefix: defaultKeyPrefix,
	}
	for _, option := range options {
		option(r)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "[redisrepo.New] redis ping")
	}
	return r, nil
}

func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("[redisrepo.Get] key is required")
	}
	value, err := r.client.Get(ctx, r.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "[redisrepo.Get] redis get")
	}
	return value, nil
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("[redisrepo.Set] key is required")
	}
	if err := r.client.Set(ctx, r.keyPrefix+key, value, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "[redisrepo.Set] redis set")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("[redisrepo.Delete] key is required")
	}
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return errors.Wrap(err, "[redisrepo.Delete] redis del")
	}
	return nil
}

// Close releases the underlying redis connection.
func (r *Repo) Close() error {
	return r.client.Close()
}

var _ storage.Repo = (*Repo)(nil)
