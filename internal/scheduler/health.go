package scheduler

import (
	"sync"
	"time"
)

// HealthStatus is the last known state of one component.
type HealthStatus struct {
	Healthy     bool      `json:"healthy"`
	Message     string    `json:"message"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   error     `json:"-"`
}

// Health tracks component health for the /healthz endpoint and logs.
type Health struct {
	mu         sync.RWMutex
	components map[string]HealthStatus
	now        func() time.Time
}

// NewHealth creates an empty tracker.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]HealthStatus),
		now:        time.Now,
	}
}

// SetHealthy marks component healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.components[component] = HealthStatus{
		Healthy:     true,
		Message:     message,
		LastCheck:   now,
		LastSuccess: now,
	}
}

// SetUnhealthy marks component unhealthy. The last success time is kept.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.components[component]
	st.Healthy = false
	st.LastCheck = h.now()
	st.LastError = err
	st.Message = err.Error()
	h.components[component] = st
}

// Status returns the status of component and whether it has been reported.
func (h *Health) Status(component string) (HealthStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st, ok := h.components[component]
	return st, ok
}

// Snapshot returns a copy of every component's status.
func (h *Health) Snapshot() map[string]HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]HealthStatus, len(h.components))
	for name, st := range h.components {
		out[name] = st
	}
	return out
}

// Healthy reports whether every reported component is healthy.
func (h *Health) Healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, st := range h.components {
		if !st.Healthy {
			return false
		}
	}
	return true
}
