package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

// RedisStore keeps the episode state as a single JSON document under one
// key, for deployments where runs move between hosts and a local file
// would not follow them.
type RedisStore struct {
	Client *redis.Client
	Key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{Client: client, Key: key}
}

func (s *RedisStore) Load(ctx context.Context) (models.EpisodeState, error) {
	data, err := s.Client.Get(ctx, s.Key).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.WithFields(logrus.Fields{
				"key": s.Key,
			}).Warnf("State key unreadable, starting with empty episode state: %v", err)
		}
		return models.EpisodeState{}, nil
	}

	var st models.EpisodeState
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		logrus.WithFields(logrus.Fields{
			"key": s.Key,
		}).Warnf("State key corrupt, starting with empty episode state: %v", err)
		return models.EpisodeState{}, nil
	}
	if st == nil {
		st = models.EpisodeState{}
	}

	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, st models.EpisodeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal episode state: %w", err)
	}

	if err := s.Client.Set(ctx, s.Key, data, 0).Err(); err != nil {
		return fmt.Errorf("state: write state key %q: %w", s.Key, err)
	}

	return nil
}
