package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

const answerKeyPrefix = "qa:answer:"

// AnswerCache keeps finished query answers in redis for a short TTL so
// repeated questions skip the embed/retrieve/generate pipeline. Entries are
// flushed whenever the chunk corpus changes.
type AnswerCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redisv9.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{client: client, ttl: ttl}
}

type cachedAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

func (c *AnswerCache) GetAnswer(ctx context.Context, question string) (string, []string, bool, error) {
	raw, err := c.client.Get(ctx, answerKey(question)).Result()
	if err == redisv9.Nil {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("redis get answer failed: %w", err)
	}

	var entry cachedAnswer
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return "", nil, false, fmt.Errorf("unmarshal cached answer failed: %w", err)
	}
	if entry.Sources == nil {
		entry.Sources = []string{}
	}
	return entry.Answer, entry.Sources, true, nil
}

func (c *AnswerCache) SetAnswer(ctx context.Context, question, answer string, sources []string) error {
	payload, err := json.Marshal(cachedAnswer{Answer: answer, Sources: sources})
	if err != nil {
		return fmt.Errorf("marshal answer cache failed: %w", err)
	}
	if err := c.client.Set(ctx, answerKey(question), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}

// Flush removes every cached answer.
func (c *AnswerCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, answerKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete answer failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan answers failed: %w", err)
	}
	return nil
}

// answerKey hashes the whitespace- and case-normalized question so trivially
// reworded repeats share an entry.
func answerKey(question string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	sum := sha256.Sum256([]byte(normalized))
	return answerKeyPrefix + hex.EncodeToString(sum[:])
}
