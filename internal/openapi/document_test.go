package openapi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Validates(t *testing.T) {
	doc := Document()
	require.NoError(t, Validate(context.Background(), doc))
	assert.Equal(t, "1.0.0", doc.Info.Version)
}

func TestRoutes(t *testing.T) {
	routes := Routes(Document())

	want := []Route{
		{Method: "GET", Path: "/api/health", OperationID: "healthCheck"},
		{Method: "GET", Path: "/api/users", OperationID: "listUsers"},
		{Method: "POST", Path: "/api/users", OperationID: "createUser"},
		{Method: "GET", Path: "/api/users/{id}", OperationID: "getUser"},
	}
	assert.Equal(t, want, routes)
}

func TestDocument_MarshalsToJSON(t *testing.T) {
	data, err := json.Marshal(Document())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "3.0.3", decoded["openapi"])

	components := decoded["components"].(map[string]any)
	schemas := components["schemas"].(map[string]any)
	assert.Contains(t, schemas, "User")
	assert.Contains(t, schemas, "NewUser")
	assert.Contains(t, schemas, "APIResponse")
}

func TestCheckResponse(t *testing.T) {
	doc := Document()

	tests := []struct {
		name    string
		method  string
		path    string
		status  int
		body    string
		wantErr bool
	}{
		{
			name:   "user list",
			method: "GET", path: "/api/users", status: 200,
			body: `[{"id":1,"name":"John Doe","email":"john@example.com","city":"New York"}]`,
		},
		{
			name:   "missing user is null",
			method: "GET", path: "/api/users/{id}", status: 200,
			body: `null`,
		},
		{
			name:   "health",
			method: "GET", path: "/api/health", status: 200,
			body: `{"message":"ok","timestamp":"2024-01-01T00:00:00.000Z","data":{"uptime":"5ms"}}`,
		},
		{
			name:   "user without id",
			method: "POST", path: "/api/users", status: 201,
			body:    `{"name":"A","email":"b@c","city":"D"}`,
			wantErr: true,
		},
		{
			name:   "string id",
			method: "GET", path: "/api/users/{id}", status: 200,
			body:    `{"id":"1","name":"A","email":"b@c","city":"D"}`,
			wantErr: true,
		},
		{
			name:   "undeclared status",
			method: "GET", path: "/api/users", status: 404,
			body:    `{}`,
			wantErr: true,
		},
		{
			name:   "unknown path",
			method: "GET", path: "/nope", status: 200,
			body:    `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckResponse(doc, tt.method, tt.path, tt.status, []byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
