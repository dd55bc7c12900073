package style

import (
	"fmt"
	"sync"
)

// ThemeManager registers named themes (each a flat variable map) and tracks
// which one is active. Theme registration is a distinct, programmatic
// concern from stylesheet parsing: a theme is swapped at runtime (e.g. a
// user toggling light/dark) without touching the parsed rule set.
type ThemeManager struct {
	mu       sync.RWMutex
	themes   map[string]map[string]string
	active   string
	onChange []func(vars map[string]string)
}

// NewThemeManager creates an empty manager.
func NewThemeManager() *ThemeManager {
	return &ThemeManager{themes: map[string]map[string]string{}}
}

// Register adds or replaces a theme's variable map.
func (m *ThemeManager) Register(name string, vars map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	m.themes[name] = cp
	if m.active == name {
		m.notifyLocked(cp)
	}
}

// SetActive switches the active theme and notifies subscribers (the
// VariableEnv bound to this manager, and any match cache) so they refresh.
func (m *ThemeManager) SetActive(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vars, ok := m.themes[name]
	if !ok {
		return fmt.Errorf("style: unknown theme %q", name)
	}
	m.active = name
	m.notifyLocked(vars)
	return nil
}

// Active returns the active theme's name.
func (m *ThemeManager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// OnChange registers a callback invoked with the new theme's variable map
// whenever the active theme changes (including re-registration of the
// currently active theme, as happens on hot reload).
func (m *ThemeManager) OnChange(fn func(vars map[string]string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

func (m *ThemeManager) notifyLocked(vars map[string]string) {
	for _, fn := range m.onChange {
		fn(vars)
	}
}
