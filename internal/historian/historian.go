// Package historian drains the board action queue and persists the records
// to Postgres in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/quizboard/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Queue yields raw records. ok is false when the wait timed out empty.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (payload string, ok bool, err error)
}

// Sink persists a batch of records.
type Sink interface {
	WriteBatch(ctx context.Context, records []cache.BoardActionRecord) error
}

// RedisQueue pops from a Redis list with BLPop.
type RedisQueue struct {
	client *redis.Client
	name   string
}

func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	if name == "" {
		name = cache.DefaultQueueName
	}
	return &RedisQueue{client: client, name: name}
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, bool, error) {
	res, err := q.client.BLPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return "", false, nil
	}
	return res[1], true, nil
}

// PostgresSink inserts records into board_actions.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// WriteBatch inserts all records in one transaction. Records already stored
// (same session and index) are skipped.
func (s *PostgresSink) WriteBatch(ctx context.Context, records []cache.BoardActionRecord) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			payload, err := json.Marshal(rec.ActionPayload)
			if err != nil {
				return fmt.Errorf("marshal payload for action %d: %w", rec.ActionIndex, err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO board_actions
					(session_id, action_index, team_id, question_id, action_type, action_payload, occurred_at)
				VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6::jsonb, $7)
				ON CONFLICT (session_id, action_index) DO NOTHING
			`, rec.SessionID, rec.ActionIndex, rec.TeamID, rec.QuestionID, rec.ActionType, string(payload),
				time.UnixMilli(rec.Timestamp).UTC())
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) {
					return fmt.Errorf("insert action %d: %s (SQLSTATE %s): %w", rec.ActionIndex, pgErr.Message, pgErr.Code, err)
				}
				return fmt.Errorf("insert action %d: %w", rec.ActionIndex, err)
			}
		}
		return nil
	})
}

// Service accumulates popped records and flushes them when the batch fills
// up or the flush interval passes.
type Service struct {
	queue      Queue
	sink       Sink
	batchSize  int
	flushDelay time.Duration
	popTimeout time.Duration
	log        logrus.FieldLogger

	batchMu sync.Mutex
	batch   []cache.BoardActionRecord
}

func NewService(queue Queue, sink Sink, batchSize int, flushDelay time.Duration, log logrus.FieldLogger) *Service {
	if batchSize <= 0 {
		batchSize = 20
	}
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		queue:      queue,
		sink:       sink,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		popTimeout: time.Second,
		log:        log,
		batch:      make([]cache.BoardActionRecord, 0, batchSize),
	}
}

// Run reads until ctx is cancelled, then flushes what is left.
func (hs *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	hs.log.Info("historian started")
	for {
		select {
		case <-ctx.Done():
			hs.flush(context.Background())
			hs.log.Info("historian shutting down")
			return nil
		case <-ticker.C:
			hs.flush(ctx)
		default:
			payload, ok, err := hs.queue.Pop(ctx, hs.popTimeout)
			if err != nil {
				if ctx.Err() == nil {
					hs.log.WithError(err).Error("queue pop failed")
				}
				continue
			}
			if !ok {
				continue
			}
			var rec cache.BoardActionRecord
			if err := json.Unmarshal([]byte(payload), &rec); err != nil {
				hs.log.WithError(err).Warn("invalid action record")
				continue
			}
			if hs.append(rec) {
				hs.flush(ctx)
			}
		}
	}
}

// append adds a record and reports whether the batch is full.
func (hs *Service) append(rec cache.BoardActionRecord) bool {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.batch = append(hs.batch, rec)
	return len(hs.batch) >= hs.batchSize
}

func (hs *Service) flush(ctx context.Context) {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	pending := make([]cache.BoardActionRecord, len(hs.batch))
	copy(pending, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	if err := hs.sink.WriteBatch(ctx, pending); err != nil {
		hs.log.WithError(err).WithField("count", len(pending)).Error("flush failed")
		return
	}
	hs.log.WithField("count", len(pending)).Debug("flushed actions")
}
