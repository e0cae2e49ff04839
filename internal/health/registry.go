package health

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	StateStarting = "starting"
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateDisabled = "disabled"
)

// ComponentStatus is the readiness view of one runtime component.
type ComponentStatus struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	Message       string `json:"message,omitempty"`
	UpdatedAtUnix int64  `json:"updated_at_unix"`
}

// Snapshot is what /readyz serves.
type Snapshot struct {
	GeneratedAtUnix int64             `json:"generated_at_unix"`
	Ready           bool              `json:"ready"`
	Components      []ComponentStatus `json:"components"`
}

type componentRecord struct {
	state     string
	message   string
	updatedAt time.Time
}

// Registry tracks component states reported by the runtime pieces. A
// component in the degraded state makes the whole service not ready; disabled
// components are ignored.
type Registry struct {
	mu         sync.RWMutex
	components map[string]componentRecord
}

func NewRegistry() *Registry {
	return &Registry{components: map[string]componentRecord{}}
}

func (r *Registry) Set(component, state, message string) {
	name := strings.ToLower(strings.TrimSpace(component))
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = componentRecord{
		state:     normalizeState(state),
		message:   strings.TrimSpace(message),
		updatedAt: time.Now().UTC(),
	}
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]ComponentStatus, 0, len(r.components))
	for name, record := range r.components {
		results = append(results, ComponentStatus{
			Name:          name,
			State:         record.state,
			Message:       record.message,
			UpdatedAtUnix: record.updatedAt.Unix(),
		})
	}
	sort.Slice(results, func(left, right int) bool {
		return results[left].Name < results[right].Name
	})

	return Snapshot{
		GeneratedAtUnix: time.Now().UTC().Unix(),
		Ready:           ready(results),
		Components:      results,
	}
}

func ready(items []ComponentStatus) bool {
	for _, item := range items {
		switch item.State {
		case StateDegraded, StateStarting:
			return false
		}
	}
	return true
}

func normalizeState(state string) string {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case StateStarting:
		return StateStarting
	case StateDegraded:
		return StateDegraded
	case StateDisabled:
		return StateDisabled
	default:
		return StateHealthy
	}
}
