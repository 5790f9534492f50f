package workers

import (
	"fmt"
	"log/slog"
)

// Worker is a background job with its own schedule.
type Worker interface {
	Start() error
	Stop()
	Name() string
}

// Manager starts and stops a set of workers together.
type Manager struct {
	workers []Worker
	logger  *slog.Logger
}

func NewManager(logger *slog.Logger, workers ...Worker) *Manager {
	return &Manager{workers: workers, logger: logger}
}

func (m *Manager) Start() error {
	for _, w := range m.workers {
		m.logger.Info("starting worker", "name", w.Name())
		if err := w.Start(); err != nil {
			return fmt.Errorf("start worker %s: %w", w.Name(), err)
		}
	}
	return nil
}

func (m *Manager) Stop() {
	for _, w := range m.workers {
		m.logger.Info("stopping worker", "name", w.Name())
		w.Stop()
	}
}
