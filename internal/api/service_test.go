package api

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/leslieo2/go-user-demo/internal/async"
	"github.com/leslieo2/go-user-demo/internal/model"
	"github.com/leslieo2/go-user-demo/internal/observability"
	"github.com/leslieo2/go-user-demo/internal/random"
)

func value[T any](t *testing.T, f *async.Future[T]) T {
	t.Helper()
	v, ok := f.Value()
	require.True(t, ok, "future should be resolved on return")
	return v
}

func TestListUsers(t *testing.T) {
	s := NewService()

	users := value[[]model.User](t, s.ListUsers(context.Background()))

	require.Len(t, users, 3)
	ids := map[int]bool{}
	for _, u := range users {
		ids[u.ID] = true
		assert.NotEmpty(t, u.Name)
		assert.NotEmpty(t, u.Email)
		assert.NotEmpty(t, u.City)
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, ids)
}

func TestListUsers_FreshSliceEachCall(t *testing.T) {
	s := NewService()

	first := value[[]model.User](t, s.ListUsers(context.Background()))
	first[0].Name = "changed"

	second := value[[]model.User](t, s.ListUsers(context.Background()))
	assert.Equal(t, "John Doe", second[0].Name)
}

func TestGetUser(t *testing.T) {
	s := NewService()

	tests := []struct {
		name     string
		id       int
		wantName string
	}{
		{name: "first", id: 1, wantName: "John Doe"},
		{name: "second", id: 2, wantName: "Jane Smith"},
		{name: "third", id: 3, wantName: "Bob Johnson"},
		{name: "zero", id: 0},
		{name: "negative", id: -1},
		{name: "unknown", id: 4},
		{name: "large", id: 1 << 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := value[*model.User](t, s.GetUser(context.Background(), tt.id))
			if tt.wantName == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.id, got.ID)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	start := time.Now()
	s := NewService()

	resp := value[model.APIResponse](t, s.HealthCheck(context.Background()))

	assert.Equal(t, "API is running successfully!", resp.Message)
	ts, err := time.Parse(time.RFC3339, resp.Timestamp)
	require.NoError(t, err)
	assert.False(t, ts.Before(start.Truncate(time.Millisecond)), "timestamp %s before call start %s", ts, start)

	assert.Equal(t, "1.0.0", resp.Data["version"])
	assert.Equal(t, "healthy", resp.Data["status"])
	assert.Regexp(t, `^\d{1,3}ms$`, resp.Data["uptime"])
}

func TestHealthCheck_InjectedClockAndRandom(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 5, 6, 7, 891_000_000, time.UTC))
	s := NewService(WithClock(clock), WithRandom(random.Fixed(123)))

	resp := value[model.APIResponse](t, s.HealthCheck(context.Background()))
	assert.Equal(t, "2025-03-04T05:06:07.891Z", resp.Timestamp)
	assert.Equal(t, "123ms", resp.Data["uptime"])

	clock.Advance(time.Second)
	later := value[model.APIResponse](t, s.HealthCheck(context.Background()))
	assert.Equal(t, "2025-03-04T05:06:08.891Z", later.Timestamp, "timestamp reflects the call time")
}

func TestCreateUser(t *testing.T) {
	s := NewService()
	in := model.NewUser{Name: "A", Email: "b@c", City: "D"}

	for i := 0; i < 200; i++ {
		u := value[model.User](t, s.CreateUser(context.Background(), in))
		assert.GreaterOrEqual(t, u.ID, 100)
		assert.Less(t, u.ID, 1100)
		assert.Equal(t, "A", u.Name)
		assert.Equal(t, "b@c", u.Email)
		assert.Equal(t, "D", u.City)
	}
}

func TestCreateUser_Bounds(t *testing.T) {
	in := model.NewUser{Name: "A", Email: "b@c", City: "D"}

	low := value[model.User](t, NewService(WithRandom(random.Fixed(0))).CreateUser(context.Background(), in))
	assert.Equal(t, 100, low.ID)

	high := value[model.User](t, NewService(WithRandom(random.Fixed(999))).CreateUser(context.Background(), in))
	assert.Equal(t, 1099, high.ID)
}

func TestCreateUser_NotStored(t *testing.T) {
	s := NewService(WithRandom(random.Fixed(0)))
	created := value[model.User](t, s.CreateUser(context.Background(), model.NewUser{Name: "X"}))

	users := value[[]model.User](t, s.ListUsers(context.Background()))
	assert.Len(t, users, 3)
	assert.Nil(t, value[*model.User](t, s.GetUser(context.Background(), created.ID)))
}

func TestService_RecordsMetricsAndSpans(t *testing.T) {
	metrics := observability.NewMetrics()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	s := NewService(
		WithMetrics(metrics),
		WithTracer(observability.NewTracerFromProvider(tp, "test")),
	)

	ctx := context.Background()
	s.ListUsers(ctx)
	s.GetUser(ctx, 1)
	s.HealthCheck(ctx)
	s.CreateUser(ctx, model.NewUser{Name: "A"})
	s.ListUsers(ctx)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.ProviderCalls.WithLabelValues(OpListUsers)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ProviderCalls.WithLabelValues(OpCreateUser)))

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{
		"provider.list_users",
		"provider.get_user",
		"provider.health_check",
		"provider.create_user",
		"provider.list_users",
	}, names)
}

func TestService_LogsEveryOperationAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewService(WithLogger(zap.New(core)), WithRandom(random.Fixed(7)))
	ctx := context.Background()

	s.ListUsers(ctx)
	s.GetUser(ctx, 2)
	s.GetUser(ctx, 99)
	s.HealthCheck(ctx)
	s.CreateUser(ctx, model.NewUser{Name: "A", Email: "b@c", City: "D"})

	var messages []string
	for _, entry := range logs.All() {
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{"Listed users", "Found user", "User not found", "Health checked", "Created user"}, messages)

	health := logs.FilterMessage("Health checked").All()
	require.Len(t, health, 1)
	assert.Equal(t, "7ms", health[0].ContextMap()["uptime"])
}
