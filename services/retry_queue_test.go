package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"court_filing_app_go/config"
	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDBRetryQueue(t *testing.T) {
	db := setupTestDB(t)
	q := NewDBRetryQueue(db)
	ctx := context.Background()

	clock := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return clock }

	require.NoError(t, q.Enqueue(ctx, &Email{To: []string{"a@example.com"}, Subject: "Retry me"}, errors.New("timeout")))

	t.Run("Not due yet", func(t *testing.T) {
		stats, err := q.Process(ctx, func(*Email) error { t.Fatal("should not send"); return nil })
		require.NoError(t, err)
		assert.Equal(t, RetryStats{}, stats)
	})

	t.Run("Due and failing again", func(t *testing.T) {
		clock = clock.Add(RetryBackoff)
		stats, err := q.Process(ctx, func(*Email) error { return errors.New("still down") })
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)

		var row models.PendingNotification
		require.NoError(t, db.First(&row).Error)
		assert.Equal(t, 2, row.Attempts)
		assert.Equal(t, "still down", row.LastError)
		assert.WithinDuration(t, clock.Add(2*RetryBackoff), row.NextAttemptAt, time.Second)
	})

	t.Run("Delivered", func(t *testing.T) {
		clock = clock.Add(2 * RetryBackoff)
		var got *Email
		stats, err := q.Process(ctx, func(e *Email) error { got = e; return nil })
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Sent)
		assert.Equal(t, "Retry me", got.Subject)

		var count int64
		db.Model(&models.PendingNotification{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestDBRetryQueueLogsStoreFailures(t *testing.T) {
	db := setupTestDB(t)
	q := NewDBRetryQueue(db)
	ctx := context.Background()
	clock := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return clock }
	require.NoError(t, q.Enqueue(ctx, &Email{To: []string{"a@example.com"}, Subject: "Hearing moved"}, errors.New("timeout")))

	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_delete", func(tx *gorm.DB) {
		tx.AddError(errors.New("database is locked"))
	}))
	hook := logtest.NewLocal(logger.Log)
	defer hook.Reset()

	clock = clock.Add(RetryBackoff)
	stats, err := q.Process(ctx, func(*Email) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Failed to remove delivered email from retry queue" {
			logged = true
			assert.Equal(t, logrus.ErrorLevel, entry.Level)
		}
	}
	assert.True(t, logged)
}

func TestDBRetryQueueDropsAfterMaxAttempts(t *testing.T) {
	db := setupTestDB(t)
	q := NewDBRetryQueue(db)
	ctx := context.Background()

	row := &models.PendingNotification{
		To:            []string{"a@example.com"},
		Subject:       "Doomed",
		Attempts:      MaxEmailAttempts - 1,
		NextAttemptAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(row).Error)

	stats, err := q.Process(ctx, func(*Email) error { return errors.New("bounce") })
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Dropped)

	// Dead letters are kept but never picked up again
	stats, err = q.Process(ctx, func(*Email) error { t.Fatal("should not retry"); return nil })
	require.NoError(t, err)
	assert.Equal(t, RetryStats{}, stats)
}

func TestRedisRetryQueue(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, &config.Config{RedisAddr: addr})
	require.NoError(t, err)

	q := NewRedisRetryQueue(client)
	q.key = "court:email:retry:test"
	defer client.Del(ctx, q.key)

	clock := time.Now()
	q.now = func() time.Time { return clock }

	require.NoError(t, q.Enqueue(ctx, &Email{To: []string{"a@example.com"}, Subject: "Redis"}, errors.New("down")))

	clock = clock.Add(RetryBackoff + time.Second)
	stats, err := q.Process(ctx, func(*Email) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)

	n, err := client.LLen(ctx, q.key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNewRetryQueueFallsBackToDB(t *testing.T) {
	db := setupTestDB(t)
	q := NewRetryQueue(context.Background(), &config.Config{}, db)
	_, ok := q.(*DBRetryQueue)
	assert.True(t, ok)
}
