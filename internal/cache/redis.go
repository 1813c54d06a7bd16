// Package cache holds the Redis side of the action log: the board pushes
// action records onto a list and the historian drains it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list action records are pushed onto.
const DefaultQueueName = "quizboard_actions"

// BoardActionRecord holds the minimal info needed by the historian.
type BoardActionRecord struct {
	SessionID     uuid.UUID              `json:"session_id"`
	ActionIndex   int                    `json:"action_index"`
	TeamID        string                 `json:"team_id,omitempty"`
	QuestionID    string                 `json:"question_id,omitempty"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// ActionLog pushes action records onto a Redis list.
type ActionLog struct {
	client *redis.Client
	queue  string
}

func NewActionLog(client *redis.Client, queue string) *ActionLog {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &ActionLog{client: client, queue: queue}
}

// Queue is the list name records are pushed onto.
func (l *ActionLog) Queue() string { return l.queue }

// Publish serializes the record to JSON and pushes it to the queue.
func (l *ActionLog) Publish(ctx context.Context, record BoardActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal BoardActionRecord: %w", err)
	}
	if err := l.client.RPush(ctx, l.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", l.queue, err)
	}
	return nil
}
