// Package viewmodel is the state behind the user list view: observable
// cells filled from the data provider, plus the commands the view exposes.
package viewmodel

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/leslieo2/go-user-demo/internal/async"
	"github.com/leslieo2/go-user-demo/internal/model"
	"github.com/leslieo2/go-user-demo/internal/state"
)

// Provider is what the view needs from the data provider.
type Provider interface {
	ListUsers(ctx context.Context) *async.Future[[]model.User]
	HealthCheck(ctx context.Context) *async.Future[model.APIResponse]
	CreateUser(ctx context.Context, in model.NewUser) *async.Future[model.User]
}

// SampleUser is the record appended by AddSampleUser.
var SampleUser = model.NewUser{
	Name:  "Sample User",
	Email: "sample@example.com",
	City:  "Sample City",
}

// ViewState is a point-in-time copy of every cell, ready for rendering.
type ViewState struct {
	Title        string             `json:"title"`
	Users        []model.User       `json:"users"`
	HealthStatus *model.APIResponse `json:"health_status"`
	Loading      bool               `json:"loading"`
}

// App holds the view's state cells.
type App struct {
	provider  Provider
	logger    *zap.Logger
	settleAll bool
	sample    model.NewUser

	title        *state.Cell[string]
	users        *state.Cell[[]model.User]
	healthStatus *state.Cell[*model.APIResponse]
	loading      *state.Cell[bool]

	initOnce    sync.Once
	initialized atomic.Bool
}

// Option configures an App.
type Option func(*App)

func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithSettleAll makes the loading flag wait for every initial request
// instead of only the health check.
func WithSettleAll(settleAll bool) Option {
	return func(a *App) { a.settleAll = settleAll }
}

// WithSampleUser replaces the record used by AddSampleUser.
func WithSampleUser(u model.NewUser) Option {
	return func(a *App) { a.sample = u }
}

// New creates the view state. The title is fixed for the App's lifetime.
func New(provider Provider, title string, opts ...Option) *App {
	a := &App{
		provider:     provider,
		logger:       zap.NewNop(),
		sample:       SampleUser,
		title:        state.NewCell(title),
		users:        state.NewCell([]model.User{}),
		healthStatus: state.NewCell[*model.APIResponse](nil),
		loading:      state.NewCell(false),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Title() *state.Cell[string]                    { return a.title }
func (a *App) Users() *state.Cell[[]model.User]              { return a.users }
func (a *App) HealthStatus() *state.Cell[*model.APIResponse] { return a.healthStatus }
func (a *App) Loading() *state.Cell[bool]                    { return a.loading }

// Init loads the view's data the first time it is called. Later calls do nothing.
func (a *App) Init(ctx context.Context) {
	a.initOnce.Do(func() {
		a.Load(ctx)
		a.initialized.Store(true)
	})
}

// Initialized reports whether Init has run.
func (a *App) Initialized() bool {
	return a.initialized.Load()
}

// Load sets loading, then requests the user list and the health status
// without waiting for either. Users are overwritten, not merged.
//
// By default only the health check clears loading, so loading can be false
// while users is still empty if the list arrives last. WithSettleAll waits
// for both.
func (a *App) Load(ctx context.Context) {
	a.loading.Set(true)

	var pending atomic.Int32
	pending.Store(2)
	settled := func() {
		if pending.Add(-1) == 0 {
			a.loading.Set(false)
		}
	}

	a.provider.ListUsers(ctx).Subscribe(func(users []model.User) {
		a.users.Set(users)
		a.logger.Debug("Users loaded", zap.Int("count", len(users)))
		if a.settleAll {
			settled()
		}
	})

	a.provider.HealthCheck(ctx).Subscribe(func(resp model.APIResponse) {
		a.healthStatus.Set(&resp)
		a.logger.Debug("Health status loaded", zap.String("timestamp", resp.Timestamp))
		if a.settleAll {
			settled()
			return
		}
		a.loading.Set(false)
	})
}

// AddSampleUser creates the sample user and appends it to the list once
// produced. The read and the write are separate steps, so concurrent calls
// can lose an append.
func (a *App) AddSampleUser(ctx context.Context) *async.Future[model.User] {
	created := a.provider.CreateUser(ctx, a.sample)
	created.Subscribe(func(u model.User) {
		current := a.users.Get()
		next := make([]model.User, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, u)
		a.users.Set(next)
		a.logger.Info("Sample user added", zap.Int("id", u.ID), zap.Int("users", len(next)))
	})
	return created
}

// Snapshot copies the current cell values.
func (a *App) Snapshot() ViewState {
	users := a.users.Get()
	copied := make([]model.User, len(users))
	copy(copied, users)

	return ViewState{
		Title:        a.title.Get(),
		Users:        copied,
		HealthStatus: a.healthStatus.Get(),
		Loading:      a.loading.Get(),
	}
}

// Destroy tears the view down: listeners are dropped and the local list is
// discarded.
func (a *App) Destroy() {
	a.title.Close()
	a.users.Close()
	a.healthStatus.Close()
	a.loading.Close()
	a.users.Set([]model.User{})
	a.logger.Debug("View destroyed")
}
