package hotreload

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Reloadable is a component that can re-read its configuration.
type Reloadable interface {
	Reload(ctx context.Context) error
	Name() string
}

// DefaultDebounce is how long the coordinator waits for a burst of events to end.
const DefaultDebounce = 500 * time.Millisecond

// Coordinator debounces change events and reloads every registered component.
type Coordinator struct {
	source <-chan Event
	logger *zap.Logger
	clock  clockwork.Clock

	mu          sync.RWMutex
	reloadables map[string]Reloadable
	debounce    time.Duration
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewCoordinator reads events from source until it is closed or Stop is called.
func NewCoordinator(source <-chan Event, logger *zap.Logger, clock clockwork.Clock) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Coordinator{
		source:      source,
		logger:      logger,
		clock:       clock,
		reloadables: make(map[string]Reloadable),
		debounce:    DefaultDebounce,
	}
}

// Register adds a component. Names must be unique.
func (c *Coordinator) Register(r Reloadable) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := r.Name()
	if _, exists := c.reloadables[name]; exists {
		return fmt.Errorf("reloadable %s already registered", name)
	}
	c.reloadables[name] = r
	c.logger.Info("Registered reloadable component", zap.String("name", name))
	return nil
}

func (c *Coordinator) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reloadables, name)
}

// SetDebounceTime takes effect for the next burst of events.
func (c *Coordinator) SetDebounceTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debounce = d
}

func (c *Coordinator) debounceTime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.debounce
}

// Start launches the event loop.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("coordinator already running")
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx, c.done)

	c.logger.Info("Hot reload coordinator started")
	return nil
}

// Stop ends the event loop and waits for an in-flight reload to finish.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	c.logger.Info("Hot reload coordinator stopped")
}

func (c *Coordinator) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cancel != nil
}

func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	var (
		timer   clockwork.Timer
		timerC  <-chan time.Time
		pending []Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-c.source:
			if !ok {
				return
			}
			pending = append(pending, ev)
			if timer == nil {
				timer = c.clock.NewTimer(c.debounceTime())
				timerC = timer.Chan()
			} else {
				timer.Reset(c.debounceTime())
			}

		case <-timerC:
			timer, timerC = nil, nil
			if err := c.Reload(ctx, pending); err != nil {
				c.logger.Error("Hot reload completed with errors", zap.Error(err))
			}
			pending = pending[:0]
		}
	}
}

// Reload reloads every component in name order and joins their errors.
func (c *Coordinator) Reload(ctx context.Context, events []Event) error {
	c.mu.RLock()
	names := make([]string, 0, len(c.reloadables))
	for name := range c.reloadables {
		names = append(names, name)
	}
	slices.Sort(names)
	targets := make([]Reloadable, 0, len(names))
	for _, name := range names {
		targets = append(targets, c.reloadables[name])
	}
	c.mu.RUnlock()

	if len(targets) == 0 {
		return nil
	}

	c.logger.Info("Triggering hot reload", zap.Int("events", len(events)))
	for _, ev := range events {
		c.logger.Debug("Reload triggered by", zap.String("path", ev.Path), zap.String("operation", ev.Op.String()))
	}

	var errs []error
	for _, r := range targets {
		if err := r.Reload(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to reload %s: %w", r.Name(), err))
			continue
		}
		c.logger.Info("Successfully reloaded component", zap.String("name", r.Name()))
	}
	return errors.Join(errs...)
}
