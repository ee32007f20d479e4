package canvas

import (
	"errors"
	"sort"
	"sync"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/interaction"
)

// ErrNotOpen is returned when no canvas is open for a workflow.
var ErrNotOpen = errors.New("canvas not open")

// Manager tracks the open canvases by workflow name. All canvases share
// one event bus so subscribers can follow every session at once.
type Manager struct {
	mu       sync.RWMutex
	canvases map[string]*Canvas
	opts     Options
	bus      *interaction.EventBus
}

func NewManager(opts Options) *Manager {
	return &Manager{
		canvases: make(map[string]*Canvas),
		opts:     opts,
		bus:      interaction.NewEventBus(),
	}
}

// Bus returns the event bus shared by all canvases.
func (m *Manager) Bus() *interaction.EventBus { return m.bus }

// Open returns the canvas for def.Name, creating it from def when none is
// open yet.
func (m *Manager) Open(def *flow.WorkflowDefinition) (*Canvas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.canvases[def.Name]; ok {
		return c, nil
	}
	c, err := New(def, m.opts, m.bus)
	if err != nil {
		return nil, err
	}
	m.canvases[def.Name] = c
	return c, nil
}

func (m *Manager) Get(name string) (*Canvas, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.canvases[name]
	if !ok {
		return nil, ErrNotOpen
	}
	return c, nil
}

// Close forgets the canvas and detaches it from the bus. Unsaved edits
// are dropped.
func (m *Manager) Close(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.canvases[name]
	if !ok {
		return false
	}
	delete(m.canvases, name)
	c.Detach()
	return true
}

// Names lists open canvases, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.canvases))
	for name := range m.canvases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
