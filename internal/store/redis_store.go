package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/worksheetlab/worksheet-service/internal/models"
)

const (
	slotWorksheet = "worksheet"
	slotIndex     = "index"
	slotStudent   = "student"
	slotCompleted = "completed"
)

// RedisSessionStore keeps session state in Redis under TTL-bounded keys,
// so abandoned sessions expire the way a closed browser tab would.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore connects to Redis from a URL and verifies the
// connection before returning.
func NewRedisSessionStore(redisURL string, ttl time.Duration) (*RedisSessionStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

func sessionKey(sessionID, slot string) string {
	return "session:" + sessionID + ":" + slot
}

func sessionKeys(sessionID string) []string {
	return []string{
		sessionKey(sessionID, slotWorksheet),
		sessionKey(sessionID, slotIndex),
		sessionKey(sessionID, slotStudent),
		sessionKey(sessionID, slotCompleted),
	}
}

// set writes one slot and refreshes the TTL of the session's other slots,
// so activity extends the whole session rather than a single key.
func (s *RedisSessionStore) set(ctx context.Context, sessionID, slot string, value any) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID, slot), value, s.ttl)
	for _, key := range sessionKeys(sessionID) {
		if key != sessionKey(sessionID, slot) {
			pipe.Expire(ctx, key, s.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session slot %s: %w", slot, err)
	}
	return nil
}

func (s *RedisSessionStore) SaveWorksheet(ctx context.Context, sessionID string, worksheet *models.Worksheet) error {
	data, err := json.Marshal(worksheet)
	if err != nil {
		return fmt.Errorf("failed to marshal worksheet: %w", err)
	}
	return s.set(ctx, sessionID, slotWorksheet, data)
}

func (s *RedisSessionStore) GetWorksheet(ctx context.Context, sessionID string) (*models.Worksheet, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID, slotWorksheet)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}

	var worksheet models.Worksheet
	if err := json.Unmarshal(data, &worksheet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal worksheet: %w", err)
	}
	return &worksheet, nil
}

func (s *RedisSessionStore) SaveCurrentIndex(ctx context.Context, sessionID string, index int) error {
	return s.set(ctx, sessionID, slotIndex, index)
}

func (s *RedisSessionStore) GetCurrentIndex(ctx context.Context, sessionID string) (int, error) {
	value, err := s.client.Get(ctx, sessionKey(sessionID, slotIndex)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read current index: %w", err)
	}

	index, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("corrupt current index %q: %w", value, err)
	}
	return index, nil
}

func (s *RedisSessionStore) SaveStudentInfo(ctx context.Context, sessionID string, info *models.StudentInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal student info: %w", err)
	}
	return s.set(ctx, sessionID, slotStudent, data)
}

func (s *RedisSessionStore) GetStudentInfo(ctx context.Context, sessionID string) (*models.StudentInfo, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID, slotStudent)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read student info: %w", err)
	}

	var info models.StudentInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal student info: %w", err)
	}
	return &info, nil
}

func (s *RedisSessionStore) MarkCompleted(ctx context.Context, sessionID string, completed bool) error {
	value := "0"
	if completed {
		value = "1"
	}
	return s.set(ctx, sessionID, slotCompleted, value)
}

func (s *RedisSessionStore) IsCompleted(ctx context.Context, sessionID string) (bool, error) {
	value, err := s.client.Get(ctx, sessionKey(sessionID, slotCompleted)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read completed flag: %w", err)
	}
	return value == "1", nil
}

func (s *RedisSessionStore) UpdateQuestionAnswer(ctx context.Context, sessionID, questionID, answer string, isCorrect bool) error {
	worksheet, err := s.GetWorksheet(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	updated, changed := worksheet.WithAnswer(questionID, answer, isCorrect)
	if !changed {
		return nil
	}
	return s.SaveWorksheet(ctx, sessionID, updated)
}

func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeys(sessionID)...).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
