package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each document as a plain string key.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a Redis-backed store. Keys are namespaced with prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "teamhub:doc:"
	}
	return &Redis{client: client, prefix: prefix}
}

// Load reads the document, creating "{}" when the key is missing.
func (r *Redis) Load(ctx context.Context, c Collection) ([]byte, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	key := r.key(c)
	doc, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("docstore/redis: get %s: %w", c, err)
	}
	if err := r.client.SetNX(ctx, key, emptyDocument, 0).Err(); err != nil {
		return nil, fmt.Errorf("docstore/redis: create %s: %w", c, err)
	}
	doc, err = r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("docstore/redis: get %s: %w", c, err)
	}
	return doc, nil
}

// Save overwrites the document.
func (r *Redis) Save(ctx context.Context, c Collection, doc []byte) error {
	if err := validate(c); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(c), doc, 0).Err(); err != nil {
		return fmt.Errorf("docstore/redis: set %s: %w", c, err)
	}
	return nil
}

func (r *Redis) key(c Collection) string {
	return r.prefix + string(c)
}

var _ Store = (*Redis)(nil)
