package services

import (
	"strings"
	"sync"
	"time"

	"court_filing_app_go/logger"

	"github.com/sirupsen/logrus"
)

// Failed login thresholds
const (
	FailedLoginWindow    = 10 * time.Minute
	FailedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlerts            = 100
)

// SecurityEventMonitor counts failed logins per client and raises alerts
type SecurityEventMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time
	alerted      map[string]time.Time
	alerts       []SecurityAlert
	now          func() time.Time
}

// SecurityAlert is one raised alert, newest first in GetRecentAlerts
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Email     string    `json:"email,omitempty"`
	Attempts  int       `json:"attempts"`
	Reason    string    `json:"reason"`
}

// Monitor is the global monitor instance
var Monitor = NewSecurityMonitor()

// NewSecurityMonitor creates an empty monitor
func NewSecurityMonitor() *SecurityEventMonitor {
	return &SecurityEventMonitor{
		failedLogins: make(map[string][]time.Time),
		alerted:      make(map[string]time.Time),
		now:          time.Now,
	}
}

// TrackFailedLogin records a failed attempt from ip. It reports whether an alert was raised.
func (m *SecurityEventMonitor) TrackFailedLogin(ip, email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-FailedLoginWindow)
	recent := m.failedLogins[ip][:0]
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.failedLogins[ip] = recent

	if len(recent) < FailedLoginThreshold {
		return false
	}
	if last, ok := m.alerted[ip]; ok && now.Sub(last) < alertCooldown {
		return false
	}
	m.alerted[ip] = now

	alert := SecurityAlert{
		Timestamp: now,
		IP:        ip,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Attempts:  len(recent),
		Reason:    "Multiple failed logins",
	}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}

	logger.Log.WithFields(logrus.Fields{
		"security": "FAILED_LOGIN_BURST",
		"ip":       ip,
		"email":    alert.Email,
		"attempts": alert.Attempts,
	}).Warn("Multiple failed logins detected")
	return true
}

// ResetLogins forgets the failures of ip, called after a successful login
func (m *SecurityEventMonitor) ResetLogins(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failedLogins, ip)
}

// GetRecentAlerts returns a copy of the alert history
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SecurityAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Prune drops counters and cooldowns that can no longer matter
func (m *SecurityEventMonitor) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > FailedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, last := range m.alerted {
		if now.Sub(last) > alertCooldown {
			delete(m.alerted, ip)
		}
	}
}
