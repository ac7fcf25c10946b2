// Package openapi describes the mock API served under /api.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/leslieo2/go-user-demo/internal/constants"
)

// Route is a method and path pair declared by the document.
type Route struct {
	Method      string
	Path        string
	OperationID string
}

func componentRef(name string, schema *openapi3.Schema) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name, Value: schema}
}

func jsonResponse(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(description).
			WithJSONSchemaRef(schema),
	}
}

// Document builds the OpenAPI description of the mock API.
func Document() *openapi3.T {
	userSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("city", openapi3.NewStringSchema())
	userSchema.Required = []string{"id", "name", "email", "city"}

	newUserSchema := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("city", openapi3.NewStringSchema())

	responseSchema := openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("timestamp", openapi3.NewDateTimeSchema()).
		WithProperty("data", openapi3.NewObjectSchema().WithAnyAdditionalProperties())
	responseSchema.Required = []string{"message", "timestamp"}

	user := componentRef("User", userSchema)
	newUser := componentRef("NewUser", newUserSchema)
	apiResponse := componentRef("APIResponse", responseSchema)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Go User Demo API",
			Description: "Mock user API backing the demo view. Responses are built from literal data.",
			Version:     constants.APIVersion,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"User":        user,
				"NewUser":     newUser,
				"APIResponse": apiResponse,
			},
		},
	}

	doc.AddOperation(constants.PathAPIUsers, http.MethodGet, &openapi3.Operation{
		OperationID: "listUsers",
		Summary:     "List every mock user",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("The mock users",
				&openapi3.SchemaRef{Value: openapi3.NewArraySchema().WithItems(userSchema)})),
		),
	})

	doc.AddOperation(constants.PathAPIUsers, http.MethodPost, &openapi3.Operation{
		OperationID: "createUser",
		Summary:     "Assign an id to a new user",
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(newUser),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusCreated, jsonResponse("The user with its generated id", user)),
			openapi3.WithStatus(http.StatusBadRequest, jsonResponse("Malformed body",
				&openapi3.SchemaRef{Value: openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())})),
		),
	})

	doc.AddOperation(constants.PathAPIUser, http.MethodGet, &openapi3.Operation{
		OperationID: "getUser",
		Summary:     "Look up a user by id",
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewIntegerSchema())},
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("The user, or null when no user has the id",
				&openapi3.SchemaRef{Value: &openapi3.Schema{Nullable: true, AllOf: openapi3.SchemaRefs{user}}})),
		),
	})

	doc.AddOperation(constants.PathAPIHealth, http.MethodGet, &openapi3.Operation{
		OperationID: "healthCheck",
		Summary:     "Report API status",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Status report stamped at call time", apiResponse)),
		),
	})

	return doc
}

// Validate checks the generated document.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("OpenAPI document validation failed: %w", err)
	}
	return nil
}

// Routes lists the operations in the document sorted by path, then method.
func Routes(doc *openapi3.T) []Route {
	var routes []Route
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			routes = append(routes, Route{Method: method, Path: path, OperationID: op.OperationID})
		}
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// CheckResponse validates a JSON body against the schema the document declares
// for the operation and status.
func CheckResponse(doc *openapi3.T, method, path string, status int, body []byte) error {
	item := doc.Paths.Value(path)
	if item == nil {
		return fmt.Errorf("no path %s in document", path)
	}
	op := item.GetOperation(method)
	if op == nil {
		return fmt.Errorf("no %s operation on %s", method, path)
	}
	resp := op.Responses.Status(status)
	if resp == nil || resp.Value == nil {
		return fmt.Errorf("%s %s does not declare status %d", method, path, status)
	}
	media := resp.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return fmt.Errorf("%s %s status %d has no JSON schema", method, path, status)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	if err := media.Schema.Value.VisitJSON(v); err != nil {
		return fmt.Errorf("%s %s status %d: %w", method, path, status, err)
	}
	return nil
}
