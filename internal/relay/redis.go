package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/google/uuid"

	"chatseal/internal/domain"
)

const redisUsersKey = "users"

func redisPublicKeyKey(user domain.UserID) string { return "user:" + string(user) + ":pk" }

func redisConvKey(conversation domain.ConversationID) string { return "conv:" + string(conversation) }

// RedisBackend stores the directory and conversation logs in Redis:
//
//	users          SET of known user ids
//	user:<id>:pk   public key snapshot
//	conv:<id>      LIST of JSON message records, oldest first
type RedisBackend struct {
	client *redis.Client
	now    func() time.Time
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend connects to the Redis server at url
// (redis://[:password@]host:port/db) and verifies it responds.
func NewRedisBackend(url string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opt)
	if err := c.Ping().Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBackend{client: c, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (b *RedisBackend) PutPublicKey(ctx context.Context, user domain.UserID, key domain.PublicKeySnapshot) error {
	_, err := b.client.WithContext(ctx).TxPipelined(func(p redis.Pipeliner) error {
		p.SAdd(redisUsersKey, string(user))
		p.Set(redisPublicKeyKey(user), string(key), 0)
		return nil
	})
	return err
}

func (b *RedisBackend) User(ctx context.Context, user domain.UserID) (domain.UserProfile, error) {
	c := b.client.WithContext(ctx)
	known, err := c.SIsMember(redisUsersKey, string(user)).Result()
	if err != nil {
		return domain.UserProfile{}, err
	}
	if !known {
		return domain.UserProfile{}, ErrUnknownUser
	}
	p := domain.UserProfile{ID: user}
	key, err := c.Get(redisPublicKeyKey(user)).Result()
	switch {
	case err == redis.Nil:
	case err != nil:
		return domain.UserProfile{}, err
	default:
		snap := domain.PublicKeySnapshot(key)
		p.PublicKey = &snap
	}
	return p, nil
}

func (b *RedisBackend) AppendMessage(ctx context.Context, rec domain.MessageRecord) (domain.MessageRecord, error) {
	rec.ID = domain.MessageID(uuid.NewString())
	rec.CreatedAt = b.now()
	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.MessageRecord{}, err
	}
	_, err = b.client.WithContext(ctx).TxPipelined(func(p redis.Pipeliner) error {
		p.RPush(redisConvKey(rec.ConversationID), raw)
		p.SAdd(redisUsersKey, string(rec.SenderID), string(rec.ReceiverID))
		return nil
	})
	if err != nil {
		return domain.MessageRecord{}, err
	}
	return rec, nil
}

func (b *RedisBackend) Messages(ctx context.Context, conversation domain.ConversationID, limit int) ([]domain.MessageRecord, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raws, err := b.client.WithContext(ctx).LRange(redisConvKey(conversation), start, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.MessageRecord, 0, len(raws))
	for _, r := range raws {
		var rec domain.MessageRecord
		if err := json.Unmarshal([]byte(r), &rec); err != nil {
			return nil, fmt.Errorf("decode message in %s: %w", redisConvKey(conversation), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *RedisBackend) Close() error { return b.client.Close() }
