package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/leslieo2/go-user-demo/internal/constants"
)

// writeJSON encodes body with the given status. Encoding failures are logged
// since the status line has already been sent.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
