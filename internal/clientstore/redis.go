package clientstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/yulishop/storefront/pkg/logger"
	pkgredis "github.com/yulishop/storefront/pkg/redis"
)

type changeMessage struct {
	Origin string `json:"origin"`
	Key    Key    `json:"key"`
}

// RedisStore keeps slots in redis and announces every write on a pub/sub
// channel so other storefront processes sharing the namespace can resync.
type RedisStore struct {
	client    *pkgredis.Client
	origin    string
	logg      *logger.Logger
	observers observers

	sub  *redis.PubSub
	done chan struct{}
	once sync.Once
}

// NewRedisStore subscribes to the change channel before returning, so no
// change published afterwards is missed.
func NewRedisStore(ctx context.Context, client *pkgredis.Client, logg *logger.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	sub, err := client.Subscribe(ctx, client.ChangesChannel())
	if err != nil {
		return nil, err
	}

	s := &RedisStore{
		client: client,
		origin: uuid.NewString(),
		logg:   logg,
		sub:    sub,
		done:   make(chan struct{}),
	}
	go s.listen(context.WithoutCancel(ctx))
	return s, nil
}

func (s *RedisStore) listen(ctx context.Context) {
	defer close(s.done)
	for msg := range s.sub.Channel() {
		var change changeMessage
		if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "payload", msg.Payload), "ignoring malformed client store change message")
			}
			continue
		}
		if change.Origin == s.origin {
			continue
		}
		s.observers.notify(ctx, change.Key)
	}
}

func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	value, err := s.client.Get(ctx, s.client.SlotKey(string(key)))
	if errors.Is(err, pkgredis.ErrNil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	if err := s.client.Set(ctx, s.client.SlotKey(string(key)), value, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return s.announce(ctx, key)
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, s.client.SlotKey(string(key))); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return s.announce(ctx, key)
}

func (s *RedisStore) OnExternalChange(key Key, handler ChangeHandler) func() {
	return s.observers.add(key, handler)
}

// announce failures are logged only; the write itself already succeeded.
func (s *RedisStore) announce(ctx context.Context, key Key) error {
	payload, err := json.Marshal(changeMessage{Origin: s.origin, Key: key})
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.client.ChangesChannel(), payload); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithStoreKey(ctx, string(key)), "error", err.Error()), "client store change announcement failed")
	}
	return nil
}

// Close stops the change listener. It does not close the redis client.
func (s *RedisStore) Close() error {
	var err error
	s.once.Do(func() {
		err = s.sub.Close()
		<-s.done
	})
	return err
}
