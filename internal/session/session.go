package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"evolvers-admin/pkg/logger"
)

// ErrNoSession is returned when an operation requires an active session.
var ErrNoSession = errors.New("no active session")

// Manager holds the bearer token for the signed-in admin and enforces an
// inactivity timeout. The token is issued by the remote backend; we read its
// exp claim without verifying the signature, since the signing secret lives
// server-side.
type Manager struct {
	mu sync.Mutex

	token string
	name  string
	email string

	timeout  time.Duration
	timer    *time.Timer
	deadline time.Time

	onExpire func()
}

func NewManager(timeout time.Duration) *Manager {
	return &Manager{timeout: timeout}
}

// OnExpire registers a callback fired when the session ends through
// inactivity. Must be set before Start.
func (m *Manager) OnExpire(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// Start begins a session for the given token, replacing any existing one.
func (m *Manager) Start(token, name, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopTimerLocked()
	m.token = token
	m.name = name
	m.email = email
	m.armTimerLocked()
}

// Token returns the current bearer token, empty when signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Identity returns the signed-in admin's name and email.
func (m *Manager) Identity() (name, email string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name, m.email, m.token != ""
}

// Active reports whether a session is live: a token is held, the inactivity
// deadline has not passed, and the token itself has not expired.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return false
	}
	if !m.deadline.IsZero() && time.Now().After(m.deadline) {
		return false
	}
	return !tokenExpired(m.token)
}

// Touch resets the inactivity timer. Called on every authenticated request.
func (m *Manager) Touch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return ErrNoSession
	}
	m.stopTimerLocked()
	m.armTimerLocked()
	return nil
}

// End terminates the session immediately.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.clearLocked()
}

func (m *Manager) armTimerLocked() {
	if m.timeout <= 0 {
		m.deadline = time.Time{}
		return
	}
	m.deadline = time.Now().Add(m.timeout)
	m.timer = time.AfterFunc(m.timeout, m.expire)
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) clearLocked() {
	m.token = ""
	m.name = ""
	m.email = ""
	m.deadline = time.Time{}
}

func (m *Manager) expire() {
	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return
	}
	email := m.email
	m.clearLocked()
	fn := m.onExpire
	m.mu.Unlock()

	logger.Info("Session expired after inactivity", map[string]interface{}{
		"email": email,
	})
	if fn != nil {
		fn()
	}
}

func tokenExpired(tokenString string) bool {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	if exp, ok := claims["exp"].(float64); ok {
		return time.Now().Unix() > int64(exp)
	}
	return false
}
