package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// Cache key names and TTLs.
const (
	ticketListKey = "tickets:all"
	userListKey   = "users:all"

	// ListingTTL bounds staleness of cached listings. Listings are also
	// invalidated on every mutation, so the TTL is only a backstop.
	ListingTTL = 30 * time.Second
)

// ErrCacheMiss is returned when the requested key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache provides read-through caching for the listing endpoints. All
// methods are safe on a nil receiver, which disables caching entirely.
type Cache struct {
	client *redis.Client
}

// New wraps a connected Redis client.
func New(client *redis.Client) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client}
}

// GetTickets returns the cached ticket listing, or ErrCacheMiss.
func (c *Cache) GetTickets(ctx context.Context) ([]domain.Ticket, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}
	payload, err := c.client.Get(ctx, ticketListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(payload, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// SetTickets stores the ticket listing.
func (c *Cache) SetTickets(ctx context.Context, tickets []domain.Ticket) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(tickets)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ticketListKey, payload, ListingTTL).Err()
}

// InvalidateTickets drops the cached ticket listing.
func (c *Cache) InvalidateTickets(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, ticketListKey).Err()
}

// GetUsers returns the cached user listing, or ErrCacheMiss.
func (c *Cache) GetUsers(ctx context.Context) ([]domain.User, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}
	payload, err := c.client.Get(ctx, userListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var users []domain.User
	if err := json.Unmarshal(payload, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUsers stores the user listing.
func (c *Cache) SetUsers(ctx context.Context, users []domain.User) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userListKey, payload, ListingTTL).Err()
}

// InvalidateUsers drops the cached user listing.
func (c *Cache) InvalidateUsers(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, userListKey).Err()
}
