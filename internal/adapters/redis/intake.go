package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IntakeStore keeps partial booking payloads while a customer finishes
// intake out of band. Entries are keyed by normalized phone digits or by an
// opaque link token, and the TTL bounds how long an abandoned intake lingers.
type IntakeStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIntakeStore(client *redis.Client, ttl time.Duration) *IntakeStore {
	return &IntakeStore{client: client, ttl: ttl}
}

func (s *IntakeStore) SaveByPhone(ctx context.Context, phoneKey string, payload []byte) error {
	return s.client.Set(ctx, "intake:phone:"+phoneKey, payload, s.ttl).Err()
}

func (s *IntakeStore) GetByPhone(ctx context.Context, phoneKey string) ([]byte, error) {
	return s.get(ctx, "intake:phone:"+phoneKey)
}

func (s *IntakeStore) DeleteByPhone(ctx context.Context, phoneKey string) error {
	return s.client.Del(ctx, "intake:phone:"+phoneKey).Err()
}

func (s *IntakeStore) SaveByToken(ctx context.Context, token string, payload []byte) error {
	return s.client.Set(ctx, "intake:token:"+token, payload, s.ttl).Err()
}

func (s *IntakeStore) GetByToken(ctx context.Context, token string) ([]byte, error) {
	return s.get(ctx, "intake:token:"+token)
}

func (s *IntakeStore) DeleteByToken(ctx context.Context, token string) error {
	return s.client.Del(ctx, "intake:token:"+token).Err()
}

// get maps a missing key to (nil, nil): absent intake is a normal outcome.
func (s *IntakeStore) get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}
