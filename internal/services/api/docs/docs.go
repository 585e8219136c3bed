// Package docs holds the OpenAPI document served under /api/docs
// refresh it with swag init -g cmd/gitplanet-api/main.go --instanceName api -o internal/services/api/docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
        }
    },
    "paths": {
        "/meta/health": {"get": {"tags": ["Meta"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}},
        "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness probe with dependency checks", "responses": {"200": {"description": "ok"}}}},
        "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build and version info", "responses": {"200": {"description": "ok"}}}},
        "/meta/service": {"get": {"tags": ["Meta"], "summary": "Service info and uptime", "responses": {"200": {"description": "ok"}}}},
        "/meta/palette": {"get": {"tags": ["Meta"], "summary": "Language color coverage", "responses": {"200": {"description": "ok"}}}},
        "/auth/github/login": {"get": {"tags": ["auth"], "summary": "Start GitHub sign in", "responses": {"302": {"description": "redirect to github"}, "503": {"description": "sign in not configured"}}}},
        "/auth/github/callback": {"get": {
            "tags": ["auth"],
            "summary": "Finish GitHub sign in",
            "parameters": [
                {"name": "code", "in": "query", "required": true, "schema": {"type": "string"}},
                {"name": "state", "in": "query", "required": true, "schema": {"type": "string"}}
            ],
            "responses": {"200": {"description": "session issued"}, "302": {"description": "redirect after sign in"}, "401": {"description": "state mismatch"}, "502": {"description": "github exchange failed"}}
        }},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "End the current session", "responses": {"204": {"description": "signed out"}}}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "The signed in user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "ok"}, "401": {"description": "unauthorized"}}}},
        "/planets/reconcile": {"post": {"tags": ["planets"], "summary": "Reconcile the signed in user's planet", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "ok"}, "401": {"description": "unauthorized"}, "502": {"description": "github unavailable"}}}},
        "/planets/me/title": {"put": {"tags": ["planets"], "summary": "Save the active title", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "ok"}, "404": {"description": "no planet yet"}, "422": {"description": "title not unlocked"}}}},
        "/planets/{username}": {"get": {
            "tags": ["planets"],
            "summary": "Public planet view",
            "parameters": [{"name": "username", "in": "path", "required": true, "schema": {"type": "string"}}],
            "responses": {"200": {"description": "ok"}, "404": {"description": "no planet"}}
        }},
        "/planets/{username}/visit": {"post": {
            "tags": ["planets"],
            "summary": "Visit a planet",
            "parameters": [{"name": "username", "in": "path", "required": true, "schema": {"type": "string"}}],
            "responses": {"200": {"description": "ok"}, "404": {"description": "no planet"}}
        }},
        "/planets/{username}/meteors": {"get": {
            "tags": ["planets"],
            "summary": "Live meteor stream",
            "parameters": [{"name": "username", "in": "path", "required": true, "schema": {"type": "string"}}],
            "responses": {"200": {"description": "text/event-stream"}}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "GitPlanet API",
	Description:      "Turns GitHub activity into a planet with achievements and titles",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
