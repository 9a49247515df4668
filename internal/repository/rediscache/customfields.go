// Package rediscache puts a Redis read-through cache in front of the custom
// field repository. Cache errors are logged and the call falls through to
// the wrapped store, so Redis is never required for correctness.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/pkg/logger"
	"github.com/ignite/contact-manager/internal/service/contact"
	"github.com/ignite/contact-manager/internal/service/customfield"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "contact-manager:customfield:"
	listKey   = keyPrefix + "all"
)

func fieldKey(id string) string { return keyPrefix + "id:" + id }

// Backend is what the cache wraps.
type Backend interface {
	customfield.Repository
	contact.FieldLookup
}

// CustomFields caches definitions by id and the full list. Every write
// goes to the backend first and then drops the affected keys.
type CustomFields struct {
	next   Backend
	client *redis.Client
	ttl    time.Duration
}

// NewCustomFields wraps next with a cache whose entries live for ttl.
func NewCustomFields(next Backend, client *redis.Client, ttl time.Duration) *CustomFields {
	return &CustomFields{next: next, client: client, ttl: ttl}
}

func (c *CustomFields) List(ctx context.Context) ([]domain.CustomField, error) {
	var cached []domain.CustomField
	if c.load(ctx, listKey, &cached) {
		return cached, nil
	}
	fields, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, listKey, fields)
	return fields, nil
}

func (c *CustomFields) Get(ctx context.Context, id string) (*domain.CustomField, error) {
	var cached domain.CustomField
	if c.load(ctx, fieldKey(id), &cached) {
		return &cached, nil
	}
	f, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, fieldKey(id), f)
	return f, nil
}

func (c *CustomFields) Create(ctx context.Context, f *domain.CustomField) error {
	if err := c.next.Create(ctx, f); err != nil {
		return err
	}
	c.invalidate(ctx, listKey)
	return nil
}

func (c *CustomFields) Update(ctx context.Context, f *domain.CustomField) error {
	if err := c.next.Update(ctx, f); err != nil {
		return err
	}
	c.invalidate(ctx, listKey, fieldKey(f.ID))
	return nil
}

func (c *CustomFields) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, listKey, fieldKey(id))
	return nil
}

// LookupFields serves what it can from the per-id keys and asks the
// backend for the rest.
func (c *CustomFields) LookupFields(ctx context.Context, ids []string) (map[string]domain.CustomField, error) {
	out := make(map[string]domain.CustomField, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fieldKey(id)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("custom field cache read failed", "error", err)
		vals = nil
	}

	var missing []string
	for i, id := range ids {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				var f domain.CustomField
				if json.Unmarshal([]byte(s), &f) == nil {
					out[id] = f
					continue
				}
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := c.next.LookupFields(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, f := range found {
		out[id] = f
		c.store(ctx, fieldKey(id), f)
	}
	return out, nil
}

func (c *CustomFields) load(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("custom field cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("custom field cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CustomFields) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("custom field cache write failed", "key", key, "error", err)
	}
}

func (c *CustomFields) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("custom field cache invalidation failed", "keys", keys, "error", err)
	}
}
