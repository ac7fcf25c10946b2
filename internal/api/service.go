// Package api is the mock data provider behind the view. Every operation
// answers from literal data and hands the result back as an already
// resolved single-value production.
package api

import (
	"context"
	"strconv"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/leslieo2/go-user-demo/internal/async"
	"github.com/leslieo2/go-user-demo/internal/constants"
	"github.com/leslieo2/go-user-demo/internal/model"
	"github.com/leslieo2/go-user-demo/internal/observability"
	"github.com/leslieo2/go-user-demo/internal/random"
)

// Operation names used for spans and metrics
const (
	OpListUsers   = "list_users"
	OpGetUser     = "get_user"
	OpHealthCheck = "health_check"
	OpCreateUser  = "create_user"
)

// Service simulates a remote user API without performing any I/O.
type Service struct {
	clock   clockwork.Clock
	rand    random.Source
	logger  *zap.Logger
	tracer  *observability.Tracer
	metrics *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for health-check timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithRandom sets the source for generated ids and uptimes.
func WithRandom(r random.Source) Option {
	return func(s *Service) { s.rand = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithTracer(t *observability.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a provider with a real clock and a secure random source
// unless overridden.
func NewService(opts ...Option) *Service {
	s := &Service{
		clock:  clockwork.NewRealClock(),
		rand:   random.NewSecureSource(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mockUsers builds the fixed user set. A fresh slice is returned on every call.
func mockUsers() []model.User {
	return []model.User{
		{ID: 1, Name: "John Doe", Email: "john@example.com", City: "New York"},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", City: "Los Angeles"},
		{ID: 3, Name: "Bob Johnson", Email: "bob@example.com", City: "Chicago"},
	}
}

// ListUsers produces the full mock user list.
func (s *Service) ListUsers(ctx context.Context) *async.Future[[]model.User] {
	end := s.begin(ctx, OpListUsers)
	defer end()

	users := mockUsers()
	s.logger.Debug("Listed users", zap.Int("count", len(users)))
	return async.Resolved(users)
}

// GetUser produces the user with the given id, or nil when there is none.
// Absence is a successful result.
func (s *Service) GetUser(ctx context.Context, id int) *async.Future[*model.User] {
	end := s.begin(ctx, OpGetUser, attribute.Int("user.id", id))
	defer end()

	for _, u := range mockUsers() {
		if u.ID == id {
			found := u
			s.logger.Debug("Found user", zap.Int("id", id))
			return async.Resolved(&found)
		}
	}

	s.logger.Debug("User not found", zap.Int("id", id))
	return async.Resolved[*model.User](nil)
}

// HealthCheck produces a status report stamped with the current time.
// The uptime is a random placeholder.
func (s *Service) HealthCheck(ctx context.Context) *async.Future[model.APIResponse] {
	end := s.begin(ctx, OpHealthCheck)
	defer end()

	resp := model.APIResponse{
		Message:   constants.HealthMessage,
		Timestamp: s.clock.Now().UTC().Format(model.TimestampLayout),
		Data: map[string]any{
			"version": constants.APIVersion,
			"status":  constants.HealthyStatus,
			"uptime":  strconv.Itoa(s.rand.Intn(constants.UptimeUpperBound)) + "ms",
		},
	}
	s.logger.Debug("Health checked",
		zap.String("timestamp", resp.Timestamp),
		zap.Any("uptime", resp.Data["uptime"]))
	return async.Resolved(resp)
}

// CreateUser assigns a random id in [100, 1100) to the new user. Collisions
// with existing ids are not checked and nothing is stored.
func (s *Service) CreateUser(ctx context.Context, in model.NewUser) *async.Future[model.User] {
	end := s.begin(ctx, OpCreateUser)
	defer end()

	user := in.WithID(constants.GeneratedIDOffset + s.rand.Intn(constants.GeneratedIDRange))
	s.logger.Debug("Created user", zap.Int("id", user.ID), zap.String("name", user.Name))
	return async.Resolved(user)
}

func (s *Service) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) func() {
	if s.metrics != nil {
		s.metrics.RecordProviderCall(op)
	}
	if s.tracer == nil {
		return func() {}
	}
	_, span := s.tracer.StartSpan(ctx, "provider."+op, attrs...)
	return func() { span.End() }
}
