// Package docs holds the OpenAPI description served at /swagger.
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
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Users", "description": "Registration, login and profile"},
        {"name": "Tasks", "description": "Tasks, dependencies and priority scores"}
    ],
    "paths": {
        "/register": {"post": {"tags": ["Users"], "summary": "Register a new user",
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "409": {"description": "Conflict"}}}},
        "/login": {"post": {"tags": ["Users"], "summary": "Log in",
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "401": {"description": "Unauthorized"}}}},
        "/me": {
            "get": {"tags": ["Users"], "summary": "Current user profile", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}}}},
            "put": {"tags": ["Users"], "summary": "Update name and phone number", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ProfileRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}}, "409": {"description": "Conflict"}}}
        },
        "/tasks": {
            "get": {"tags": ["Tasks"], "summary": "List tasks", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "filter", "type": "string", "enum": ["completed", "pending", "circular", "high-priority", "by-date", "with-dependencies", "without-dependencies"]},
                    {"in": "query", "name": "min", "type": "number"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.TaskResponse"}}}}},
            "post": {"tags": ["Tasks"], "summary": "Create a task", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.TaskRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.TaskResponse"}}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/tasks/graph": {"get": {"tags": ["Tasks"], "summary": "Dependency graph with execution order", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.GraphResponse"}}}}},
        "/tasks/recompute": {"post": {"tags": ["Tasks"], "summary": "Recompute scores and circular flags", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.TaskResponse"}}}}}},
        "/tasks/{id}": {
            "get": {"tags": ["Tasks"], "summary": "Get a task", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TaskResponse"}}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Tasks"], "summary": "Update a task", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.TaskRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TaskResponse"}}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["Tasks"], "summary": "Delete a task", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/tasks/{id}/toggle": {"post": {"tags": ["Tasks"], "summary": "Toggle task completion", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ToggleResponse"}}}}}
    },
    "definitions": {
        "handler.RegisterRequest": {"type": "object", "required": ["email", "name", "password"], "properties": {
            "email": {"type": "string"}, "name": {"type": "string"}, "password": {"type": "string"}, "phone": {"type": "string"}}},
        "handler.LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {
            "email": {"type": "string"}, "password": {"type": "string"}}},
        "handler.ProfileRequest": {"type": "object", "required": ["name"], "properties": {
            "name": {"type": "string"}, "phone": {"type": "string"}}},
        "handler.UserResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}}},
        "handler.AuthResponse": {"type": "object", "properties": {
            "token": {"type": "string"}, "user": {"$ref": "#/definitions/handler.UserResponse"}}},
        "handler.TaskRequest": {"type": "object", "required": ["number", "title", "due_date", "estimated_hours", "importance"], "properties": {
            "number": {"type": "integer"}, "title": {"type": "string"}, "due_date": {"type": "string", "example": "2025-03-15"},
            "estimated_hours": {"type": "integer"}, "importance": {"type": "integer", "minimum": 1, "maximum": 10},
            "dependencies": {"type": "array", "items": {"type": "string"}}}},
        "handler.TaskResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "number": {"type": "integer"}, "title": {"type": "string"}, "due_date": {"type": "string"},
            "estimated_hours": {"type": "integer"}, "importance": {"type": "integer"},
            "dependencies": {"type": "array", "items": {"type": "string"}},
            "priorityScore": {"type": "number"}, "smartPriorityScore": {"type": "number"},
            "completed": {"type": "boolean"}, "circularTask": {"type": "boolean"}, "days_until_due": {"type": "integer"}}},
        "handler.ToggleResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "completed": {"type": "boolean"}}},
        "handler.GraphResponse": {"type": "object", "properties": {
            "tasks": {"type": "array", "items": {"$ref": "#/definitions/handler.TaskResponse"}},
            "order": {"type": "array", "items": {"type": "string"}},
            "hasCycle": {"type": "boolean"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Taskflow API",
	Description:      "Personal task tracking with dependency cycle detection and priority scoring.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
