// Package docs registers the storefront OpenAPI document with swag so that
// echo-swagger can serve it. Regenerate with `swag init -g internal/api/router.go -o internal/api/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login entry point",
                "parameters": [
                    {"type": "string", "description": "Local path to return to", "name": "from", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ports.LoginRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Register",
                "parameters": [
                    {"description": "Registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ports.RegisterRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/properties": {
            "get": {
                "produces": ["application/json"],
                "tags": ["properties"],
                "summary": "List properties",
                "parameters": [
                    {"type": "integer", "description": "Zero-based page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "size", "in": "query"},
                    {"type": "string", "description": "Free text", "name": "keyword", "in": "query"},
                    {"type": "string", "description": "HOUSE, APARTMENT, LAND, COMMERCIAL, VILLA, CONDO", "name": "propertyType", "in": "query"},
                    {"type": "string", "description": "SALE or RENT", "name": "listingType", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/properties/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["properties"],
                "summary": "Get property",
                "parameters": [
                    {"type": "integer", "description": "Property ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "ports.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ports.RegisterRequest": {
            "type": "object",
            "required": ["email", "firstName", "lastName", "password"],
            "properties": {
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "password": {"type": "string"},
                "phone": {"type": "string"},
                "role": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Session-aware front end for the property marketplace.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
