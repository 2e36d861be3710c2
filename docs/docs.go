// Package docs registers the OpenAPI document served at /api/swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/projects": {
            "get": {"tags": ["projects"], "summary": "List projects", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["projects"], "summary": "Create a project", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}}
        },
        "/projects/{slug}": {
            "get": {"tags": ["projects"], "summary": "View a project and count the view", "parameters": [{"name": "slug", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/projects/{id}/join": {
            "post": {"tags": ["membership"], "summary": "Request to join a project", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "Existing request"}, "201": {"description": "Created"}}}
        },
        "/projects/{id}/support": {
            "post": {"tags": ["projects"], "summary": "Toggle support", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}
        },
        "/join-requests/{id}/respond": {
            "post": {"tags": ["membership"], "summary": "Accept or reject a join request", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Already resolved"}}}
        },
        "/messages": {
            "post": {"tags": ["messaging"], "summary": "Send a direct message", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/conversations/{id}": {
            "get": {"tags": ["messaging"], "summary": "Open a conversation and mark it read", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}
        },
        "/notifications": {
            "get": {"tags": ["notifications"], "summary": "List notifications", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/notifications/unread-counts": {
            "get": {"tags": ["notifications"], "summary": "Unread message and notification counts", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/ai/conversations/{id}/messages": {
            "post": {"tags": ["ai"], "summary": "Send a message to an AI worker", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "User message and reply"}}}
        },
        "/ws/ticket": {
            "post": {"tags": ["realtime"], "summary": "Issue a single-use websocket ticket", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Workstation Hub API",
	Description:      "Projects, membership, direct messaging and notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
