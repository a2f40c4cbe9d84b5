// Package docs holds the OpenAPI description served by the swagger build.
// Regenerate with `swag init -g cmd/eventgated/docs.go -o internal/httpapi/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "eventgate maintainers"},
        "license": {"name": "AGPL-3.0", "url": "https://www.gnu.org/licenses/agpl-3.0.html"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/events": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Publish an event",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.PublishRequest"}}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.PublishResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/event-types": {
            "get": {
                "produces": ["application/json"],
                "summary": "List registered event types",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.EventTypesResponse"}}}
            }
        },
        "/dispatches": {
            "get": {
                "produces": ["application/json"],
                "summary": "List recent gate decisions",
                "parameters": [{"type": "integer", "name": "limit", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DispatchesResponse"}},
                    "503": {"description": "Journal disabled", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Daemon status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        }
    },
    "definitions": {
        "types.PublishRequest": {"type": "object", "properties": {"event": {"type": "string"}, "data": {"type": "object"}}},
        "types.PublishResponse": {"type": "object", "properties": {"job_id": {"type": "string"}, "queue": {"type": "string"}}},
        "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}},
        "types.EventTypesResponse": {"type": "object", "properties": {"event_types": {"type": "array", "items": {"type": "object"}}}},
        "types.DispatchesResponse": {"type": "object", "properties": {"dispatches": {"type": "array", "items": {"type": "object"}}}},
        "types.StatusResponse": {"type": "object", "properties": {"backend": {"type": "string"}, "ready": {"type": "boolean"}, "uptime_seconds": {"type": "integer"}, "event_types": {"type": "integer"}, "journal": {"type": "boolean"}, "journal_records": {"type": "integer"}, "queues": {"type": "array", "items": {"type": "object"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "eventgate API",
	Description:      "Notification dispatch gate: publish platform events and inspect routing decisions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
