package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/leslieo2/go-user-demo/internal/constants"
	"github.com/leslieo2/go-user-demo/internal/model"
	"github.com/leslieo2/go-user-demo/internal/observability"
	"github.com/leslieo2/go-user-demo/internal/openapi"
)

// viewHandler renders the current view state.
func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.StartSpan(r.Context(), "render_view")
	defer span.End()

	s.writeJSON(w, http.StatusOK, s.view.Snapshot())
}

// addSampleUserHandler is the view's "add sample user" action.
func (s *Server) addSampleUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.StartSpan(r.Context(), "add_sample_user")
	user, err := s.view.AddSampleUser(ctx).Await(ctx)
	defer func() { observability.EndSpan(span, err) }()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "CANCELLED", err.Error())
		return
	}
	span.SetAttributes(attribute.Int("user.id", user.ID))

	s.writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.provider.ListUsers(r.Context()).Await(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "CANCELLED", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

// getUserHandler answers 200 with null when no user has the id.
func (s *Server) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, constants.ErrorCodeBadRequest, "id must be an integer")
		return
	}

	user, err := s.provider.GetUser(r.Context(), id).Await(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "CANCELLED", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) apiHealthHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.provider.HealthCheck(r.Context()).Await(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "CANCELLED", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var in model.NewUser
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, constants.ErrorCodeBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, constants.ErrorCodeBadRequest, "invalid user body: "+err.Error())
		return
	}

	user, err := s.provider.CreateUser(r.Context(), in).Await(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "CANCELLED", err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}

// healthHandler is the host's liveness probe, distinct from the mock /api/health.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.StartSpan(r.Context(), "health_check")
	defer span.End()

	health := observability.NewHealthStatus(s.clock.Now(), s.startTime, constants.APIVersion, map[string]bool{
		"provider": s.provider != nil,
		"view":     s.view != nil,
	})
	s.writeJSON(w, http.StatusOK, health)
}

// readinessHandler reports ready once the view has been initialized.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ready := s.view.Initialized()
	if ready {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}

	s.logger.Debug("Readiness check completed", zap.Bool("ready", ready))
}

// docsHandler serves the OpenAPI document for the mock API.
func (s *Server) docsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.docs)
	s.logger.Debug("Documentation served", zap.Int("routes", len(openapi.Routes(s.docs))))
}
