// Package docs registers the swagger document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {"get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}},
        "/api/dashboard": {"get": {"tags": ["reports"], "summary": "Platform x status bug matrix", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "404": {"description": "NOT_READY"}}}},
        "/api/details": {"get": {"tags": ["reports"], "summary": "Detailed issue document", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "404": {"description": "NOT_READY"}}}},
        "/api/issues": {"get": {"tags": ["reports"], "summary": "Search issues", "produces": ["application/json"],
            "parameters": [
                {"type": "string", "name": "type", "in": "query", "description": "bugs|tasks|subtasks|stories"},
                {"type": "string", "name": "platform", "in": "query"},
                {"type": "string", "name": "status", "in": "query"},
                {"type": "string", "name": "assignee", "in": "query"},
                {"type": "string", "name": "sprint", "in": "query"},
                {"type": "string", "name": "fixversion", "in": "query"},
                {"type": "string", "name": "q", "in": "query"},
                {"type": "integer", "name": "limit", "in": "query"},
                {"type": "integer", "name": "offset", "in": "query"}
            ],
            "responses": {"200": {"description": "OK"}, "400": {"description": "VALIDATION_ERROR"}}}},
        "/api/releases": {"get": {"tags": ["reports"], "summary": "Releases by fix version", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/releases/{name}": {"get": {"tags": ["reports"], "summary": "One release", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "NOT_FOUND"}}}},
        "/api/sprints": {"get": {"tags": ["reports"], "summary": "Sprints", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/workload": {"get": {"tags": ["reports"], "summary": "Assignee workload", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/kpi": {"get": {"tags": ["reports"], "summary": "KPI document", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "404": {"description": "NOT_READY"}}}},
        "/api/runs": {"get": {"tags": ["runs"], "summary": "Recent runs", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/runs/latest": {"get": {"tags": ["runs"], "summary": "Latest run", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "404": {"description": "NOT_FOUND"}}}},
        "/api/runs/{id}/snapshot": {"get": {"tags": ["runs"], "summary": "Matrix snapshot of a run", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "NOT_FOUND"}}}},
        "/api/refresh": {"post": {"tags": ["runs"], "summary": "Refresh the dashboard from Jira", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "409": {"description": "RUN_IN_PROGRESS"}, "502": {"description": "JIRA_ERROR"}}}},
        "/api/assistant/chat": {"post": {"tags": ["assistant"], "summary": "Ask about the dashboard", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}, "429": {"description": "RATE_LIMITED"}}}}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "VZY Bug Dashboard",
	Description:      "Jira platform x status matrix, detailed issue views and KPI documents",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
