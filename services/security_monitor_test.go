package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecurityMonitor(t *testing.T) {
	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m := NewSecurityMonitor()
	m.now = func() time.Time { return clock }
	ip := "203.0.113.7"

	t.Run("AlertAtThreshold", func(t *testing.T) {
		for i := 1; i < FailedLoginThreshold; i++ {
			assert.False(t, m.TrackFailedLogin(ip, "Filer@Example.com"))
		}
		assert.True(t, m.TrackFailedLogin(ip, "Filer@Example.com"))

		alerts := m.GetRecentAlerts()
		assert.Len(t, alerts, 1)
		assert.Equal(t, ip, alerts[0].IP)
		assert.Equal(t, "filer@example.com", alerts[0].Email)
		assert.Equal(t, FailedLoginThreshold, alerts[0].Attempts)
	})

	t.Run("CooldownSuppressesRepeat", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.False(t, m.TrackFailedLogin(ip, ""))
		}
		assert.Len(t, m.GetRecentAlerts(), 1)
	})

	t.Run("OldAttemptsExpire", func(t *testing.T) {
		other := "198.51.100.2"
		for i := 1; i < FailedLoginThreshold; i++ {
			m.TrackFailedLogin(other, "")
		}
		clock = clock.Add(FailedLoginWindow + time.Minute)
		assert.False(t, m.TrackFailedLogin(other, ""))
	})

	t.Run("ResetAndPrune", func(t *testing.T) {
		m.ResetLogins(ip)
		clock = clock.Add(2 * time.Hour)
		m.Prune()
		m.mu.Lock()
		defer m.mu.Unlock()
		assert.Empty(t, m.alerted)
		assert.Empty(t, m.failedLogins)
	})
}
