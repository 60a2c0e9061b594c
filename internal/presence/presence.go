package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mahamedadballa/circlechat-server/internal/models"
)

// Store keeps presence and per-viewer unread counters in Redis.
// Keys:
// - <prefix>:presence:<uid> -> json {status,last_seen}
// - <prefix>:unread:<uid>   -> hash conversationID -> count
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type Info struct {
	Status   string `json:"status"`
	LastSeen int64  `json:"last_seen"`
}

func NewStore(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) presenceKey(uid string) string { return fmt.Sprintf("%s:presence:%s", s.prefix, uid) }
func (s *Store) unreadKey(uid string) string   { return fmt.Sprintf("%s:unread:%s", s.prefix, uid) }

// Set writes the user's presence. Online entries expire after the TTL so a
// vanished client degrades to offline on its own.
func (s *Store) Set(ctx context.Context, uid, status string) error {
	info := Info{Status: status, LastSeen: time.Now().Unix()}
	b, _ := json.Marshal(info)
	ttl := s.ttl
	if status == models.StatusOffline {
		ttl = 0
	}
	return s.client.Set(ctx, s.presenceKey(uid), b, ttl).Err()
}

// Get reads the user's presence; a missing key reads as offline.
func (s *Store) Get(ctx context.Context, uid string) (*Info, error) {
	b, err := s.client.Get(ctx, s.presenceKey(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Info{Status: models.StatusOffline}, nil
	}
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// IncrUnread bumps the viewer's unread counter for a conversation.
func (s *Store) IncrUnread(ctx context.Context, uid, conversationID string) error {
	return s.client.HIncrBy(ctx, s.unreadKey(uid), conversationID, 1).Err()
}

// ClearUnread resets the viewer's counter for a conversation.
func (s *Store) ClearUnread(ctx context.Context, uid, conversationID string) error {
	return s.client.HDel(ctx, s.unreadKey(uid), conversationID).Err()
}

// UnreadCounts returns the viewer's counters keyed by conversation id.
func (s *Store) UnreadCounts(ctx context.Context, uid string) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, s.unreadKey(uid)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for conv, v := range raw {
		var n int64
		_, _ = fmt.Sscan(v, &n)
		out[conv] = n
	}
	return out, nil
}
