package profile

import (
	"fmt"
	"sync"

	"github.com/wonny/tradecalc/internal/performance"
	"github.com/wonny/tradecalc/pkg/logger"
)

// Holder keeps the active profile and swaps it atomically on reload.
// Implements performance.ConfigSource.
type Holder struct {
	mu      sync.RWMutex
	path    string
	base    performance.Config
	current *Profile
	hash    string
	logger  *logger.Logger
}

// NewHolder loads path when set, otherwise serves the defaults.
// base seeds the engine parameters; keys set in the file take precedence.
func NewHolder(path string, base performance.Config, log *logger.Logger) (*Holder, error) {
	h := &Holder{path: path, base: base, logger: log}

	if path == "" {
		p := Seeded(base)
		if err := Validate(p); err != nil {
			return nil, err
		}
		if err := h.set(p); err != nil {
			return nil, err
		}
		return h, nil
	}

	if _, err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Reload re-reads the profile file. A failed load keeps the previous profile.
// Returns true when the content hash changed.
func (h *Holder) Reload() (bool, error) {
	if h.path == "" {
		return false, nil
	}

	p, _, err := LoadOver(h.path, Seeded(h.base))
	if err != nil {
		return false, fmt.Errorf("load profile %s: %w", h.path, err)
	}

	hash, err := Hash(p)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	changed := hash != h.hash
	h.current = p
	h.hash = hash
	h.mu.Unlock()

	if changed {
		for _, w := range Warn(p) {
			h.logger.WithField("code", w.Code).Warn(w.Message)
		}
		h.logger.WithFields(map[string]interface{}{
			"profile_id": p.Meta.ProfileID,
			"hash":       hash[:12],
		}).Info("Analytics profile loaded")
	}

	return changed, nil
}

func (h *Holder) set(p *Profile) error {
	hash, err := Hash(p)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.current = p
	h.hash = hash
	h.mu.Unlock()
	return nil
}

// Current returns a copy of the active profile
func (h *Holder) Current() Profile {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return *h.current
}

// Hash returns the hash of the active profile
func (h *Holder) Hash() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.hash
}

// Path returns the watched file, empty when running on defaults
func (h *Holder) Path() string {
	return h.path
}

// PerformanceConfig implements performance.ConfigSource
func (h *Holder) PerformanceConfig() performance.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Performance()
}
