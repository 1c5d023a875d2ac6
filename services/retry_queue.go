package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"court_filing_app_go/config"
	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// MaxEmailAttempts bounds delivery attempts, counting the first one
	MaxEmailAttempts = 5
	// RetryBackoff is multiplied by the attempt count to get the next delay
	RetryBackoff = 5 * time.Minute
	// retryBatchSize bounds one queue pass
	retryBatchSize = 50
)

// RetryStats summarizes one pass over the queue
type RetryStats struct {
	Sent    int
	Failed  int
	Dropped int
}

// RetryQueue stores emails whose first delivery failed
type RetryQueue interface {
	Enqueue(ctx context.Context, email *Email, cause error) error
	Process(ctx context.Context, send func(*Email) error) (RetryStats, error)
}

// NewRetryQueue returns a Redis-backed queue when REDIS_ADDR is set, else a database queue
func NewRetryQueue(ctx context.Context, cfg *config.Config, db *gorm.DB) RetryQueue {
	if cfg.RedisAddr == "" {
		return NewDBRetryQueue(db)
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, using database retry queue")
		return NewDBRetryQueue(db)
	}
	logger.Log.WithField("addr", cfg.RedisAddr).Info("Email retry queue on Redis")
	return NewRedisRetryQueue(client)
}

// NewRedisClient connects and pings Redis
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func nextAttempt(now time.Time, attempts int) time.Time {
	return now.Add(time.Duration(attempts) * RetryBackoff)
}

// DBRetryQueue keeps failed emails in the pending_notifications table
type DBRetryQueue struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBRetryQueue(db *gorm.DB) *DBRetryQueue {
	return &DBRetryQueue{db: db, now: time.Now}
}

func (q *DBRetryQueue) Enqueue(ctx context.Context, email *Email, cause error) error {
	row := &models.PendingNotification{
		To:            email.To,
		Subject:       email.Subject,
		HTMLBody:      email.HTMLBody,
		TextBody:      email.TextBody,
		Attempts:      1,
		NextAttemptAt: nextAttempt(q.now(), 1),
	}
	if cause != nil {
		row.LastError = cause.Error()
	}
	if err := q.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to queue email: %w", err)
	}
	return nil
}

func (q *DBRetryQueue) Process(ctx context.Context, send func(*Email) error) (RetryStats, error) {
	var stats RetryStats
	now := q.now()

	var due []models.PendingNotification
	if err := q.db.WithContext(ctx).
		Where("next_attempt_at <= ? AND attempts < ?", now, MaxEmailAttempts).
		Order("next_attempt_at ASC").
		Limit(retryBatchSize).
		Find(&due).Error; err != nil {
		return stats, fmt.Errorf("failed to load pending notifications: %w", err)
	}

	for i := range due {
		row := &due[i]
		err := send(&Email{To: row.To, Subject: row.Subject, HTMLBody: row.HTMLBody, TextBody: row.TextBody})
		if err == nil {
			stats.Sent++
			if err := q.db.WithContext(ctx).Delete(row).Error; err != nil {
				logger.Log.WithFields(logrus.Fields{"id": row.ID, "to": row.To}).WithError(err).Error("Failed to remove delivered email from retry queue")
			}
			continue
		}

		row.Attempts++
		row.LastError = err.Error()
		row.NextAttemptAt = nextAttempt(now, row.Attempts)
		if row.Attempts >= MaxEmailAttempts {
			stats.Dropped++
			logger.Log.WithFields(logrus.Fields{"id": row.ID, "to": row.To}).Error("Email dropped after max attempts")
		} else {
			stats.Failed++
		}
		// Exhausted rows stay in the table as a dead letter record
		if err := q.db.WithContext(ctx).Save(row).Error; err != nil {
			logger.Log.WithFields(logrus.Fields{"id": row.ID, "to": row.To}).WithError(err).Error("Failed to record email retry attempt")
		}
	}
	return stats, nil
}

// RedisRetryQueue keeps failed emails in a Redis list
type RedisRetryQueue struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// queuedEmail is the JSON stored in the Redis list
type queuedEmail struct {
	Email         Email     `json:"email"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"lastError"`
	NextAttemptAt time.Time `json:"nextAttemptAt"`
}

func NewRedisRetryQueue(client *redis.Client) *RedisRetryQueue {
	return &RedisRetryQueue{client: client, key: "court:email:retry", now: time.Now}
}

func (q *RedisRetryQueue) push(ctx context.Context, item queuedEmail) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode queued email: %w", err)
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *RedisRetryQueue) Enqueue(ctx context.Context, email *Email, cause error) error {
	item := queuedEmail{Email: *email, Attempts: 1, NextAttemptAt: nextAttempt(q.now(), 1)}
	if cause != nil {
		item.LastError = cause.Error()
	}
	return q.push(ctx, item)
}

func (q *RedisRetryQueue) Process(ctx context.Context, send func(*Email) error) (RetryStats, error) {
	var stats RetryStats
	now := q.now()

	// Only walk the items present at the start of the pass; requeued items go to the head
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return stats, fmt.Errorf("redis llen: %w", err)
	}
	if n > retryBatchSize {
		n = retryBatchSize
	}

	for i := int64(0); i < n; i++ {
		raw, err := q.client.RPop(ctx, q.key).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("redis rpop: %w", err)
		}

		var item queuedEmail
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			logger.Log.WithError(err).Error("Discarding malformed queued email")
			continue
		}

		if item.NextAttemptAt.After(now) {
			if err := q.push(ctx, item); err != nil {
				return stats, err
			}
			continue
		}

		if err := send(&item.Email); err == nil {
			stats.Sent++
			continue
		} else {
			item.Attempts++
			item.LastError = err.Error()
			item.NextAttemptAt = nextAttempt(now, item.Attempts)
		}

		if item.Attempts >= MaxEmailAttempts {
			stats.Dropped++
			logger.Log.WithFields(logrus.Fields{"to": item.Email.To, "error": item.LastError}).Error("Email dropped after max attempts")
			continue
		}
		stats.Failed++
		if err := q.push(ctx, item); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
