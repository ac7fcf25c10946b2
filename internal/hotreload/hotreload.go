// Package hotreload re-applies configuration when the config file changes.
package hotreload

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Manager ties a file Watcher to a Coordinator.
type Manager struct {
	watcher     *Watcher
	coordinator *Coordinator
	logger      *zap.Logger
	started     bool
}

// NewManager creates a manager using the real clock.
func NewManager(logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := NewWatcher(logger)
	if err != nil {
		return nil, err
	}

	return &Manager{
		watcher:     watcher,
		coordinator: NewCoordinator(watcher.Events(), logger, clockwork.NewRealClock()),
		logger:      logger,
	}, nil
}

func (m *Manager) AddWatch(path string) error {
	return m.watcher.Add(path)
}

func (m *Manager) RegisterReloadable(r Reloadable) error {
	return m.coordinator.Register(r)
}

func (m *Manager) SetDebounceTime(d time.Duration) {
	m.coordinator.SetDebounceTime(d)
}

// Start begins watching. Reloads run with a context derived from ctx.
func (m *Manager) Start(ctx context.Context) error {
	if m.started {
		return nil
	}
	if err := m.coordinator.Start(ctx); err != nil {
		return err
	}
	m.watcher.Start()
	m.started = true
	m.logger.Info("Hot reload system started", zap.Strings("paths", m.watcher.Paths()))
	return nil
}

// Stop releases the watcher. The manager cannot be restarted.
func (m *Manager) Stop() {
	m.coordinator.Stop()
	m.watcher.Stop()
	if m.started {
		m.started = false
		m.logger.Info("Hot reload system stopped")
	}
}

func (m *Manager) IsRunning() bool {
	return m.started
}
