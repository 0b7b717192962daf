package session

import (
	"crypto/subtle"
	"time"
)

// The nonce lives for one redirect round-trip. Five minutes matches the
// short-lived tab-session storage of the original flow.
const nonceTTL = 5 * time.Minute

type nonceSlot struct {
	value     string
	expiresAt time.Time
}

var nonceNowFn = time.Now

func (m *Manager) storeNonce(value string) {
	m.mu.Lock()
	m.nonce = nonceSlot{value: value, expiresAt: nonceNowFn().Add(nonceTTL)}
	m.mu.Unlock()
}

// consumeNonce compares state against the stored nonce and deletes it
// whether or not it matched. An empty or expired slot never matches.
func (m *Manager) consumeNonce(state string) bool {
	m.mu.Lock()
	slot := m.nonce
	m.nonce = nonceSlot{}
	m.mu.Unlock()

	if slot.value == "" || state == "" {
		return false
	}
	if nonceNowFn().After(slot.expiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(slot.value), []byte(state)) == 1
}
