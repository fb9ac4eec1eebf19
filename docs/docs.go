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
        "/auth/login": {
            "post": {
                "description": "Authenticate with username and password. Returns a bearer token and the user.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AuthResponse"}},
                    "400": {"description": "Missing credentials", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Register a new user. Returns a bearer token and the created user.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Register request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.AuthResponse"}},
                    "400": {"description": "Invalid request or user already exists", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/verify": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify token",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"user": {"$ref": "#/definitions/models.Identity"}}}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/communities": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Administrators see every application, other users only their own. Newest first.",
                "produces": ["application/json"],
                "tags": ["communities"],
                "summary": "List community applications",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Community"}}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Submit a new energy community application with its supporting documents.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["communities"],
                "summary": "Submit community application",
                "parameters": [
                    {"type": "string", "description": "Community name", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "description": "Energy type (solar, wind, hydraulic, biomass, mixed)", "name": "type", "in": "formData", "required": true},
                    {"type": "string", "description": "Location", "name": "location", "in": "formData", "required": true},
                    {"type": "integer", "description": "Capacity in kW", "name": "capacity", "in": "formData", "required": true},
                    {"type": "string", "description": "Description (at least 10 characters)", "name": "description", "in": "formData", "required": true},
                    {"type": "file", "description": "Technical study", "name": "technical_study", "in": "formData"},
                    {"type": "file", "description": "Economic analysis", "name": "economic_analysis", "in": "formData"},
                    {"type": "file", "description": "Legal documents", "name": "legal_docs", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Community"}},
                    "400": {"description": "Invalid application or documents", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "413": {"description": "Request too large", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/communities/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["communities"],
                "summary": "Get community application",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Community"}},
                    "403": {"description": "Application belongs to another user", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Application not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/communities/{id}/documents/{category}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/octet-stream"],
                "tags": ["communities"],
                "summary": "Download application document",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Document category (technical_study, economic_analysis, legal_docs)", "name": "category", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "403": {"description": "Application belongs to another user", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Application or document not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/communities/{id}/status": {
            "patch": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Approve or reject a pending application. Administrators only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["communities"],
                "summary": "Decide community application",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"description": "Decision", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Community"}},
                    "400": {"description": "Invalid status or application already decided", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Application not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/news": {
            "get": {
                "produces": ["application/json"],
                "tags": ["news"],
                "summary": "List news",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.News"}}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["news"],
                "summary": "Publish news article",
                "parameters": [
                    {"description": "Article", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateNewsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.News"}},
                    "400": {"description": "Missing fields", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/news/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["news"],
                "summary": "Get news article",
                "parameters": [
                    {"type": "string", "description": "Article ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.News"}},
                    "404": {"description": "Article not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/carousel": {
            "get": {
                "produces": ["application/json"],
                "tags": ["carousel"],
                "summary": "List active carousel slides",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CarouselSlide"}}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["carousel"],
                "summary": "Create carousel slide",
                "parameters": [
                    {"description": "Slide", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateCarouselSlideRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.CarouselSlide"}},
                    "400": {"description": "Missing fields", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "models.LoginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "models.RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["administrator", "community-member"]}
            }
        },
        "models.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "models.AuthResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/models.UserResponse"}}
        },
        "models.Identity": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "role": {"type": "string"}, "username": {"type": "string"}}
        },
        "models.Community": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["solar", "wind", "hydraulic", "biomass", "mixed"]},
                "location": {"type": "string"},
                "capacity": {"type": "integer"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"]},
                "ownerId": {"type": "string"},
                "documents": {"type": "object", "additionalProperties": {"type": "string"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.UpdateStatusRequest": {
            "type": "object",
            "properties": {"status": {"type": "string", "enum": ["approved", "rejected"]}}
        },
        "models.News": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "excerpt": {"type": "string"},
                "category": {"type": "string"},
                "imageUrl": {"type": "string"},
                "authorId": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.CreateNewsRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "excerpt": {"type": "string"},
                "category": {"type": "string"},
                "imageUrl": {"type": "string"}
            }
        },
        "models.CarouselSlide": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "icon": {"type": "string"},
                "backgroundColor": {"type": "string"},
                "order": {"type": "integer"},
                "isActive": {"type": "boolean"},
                "createdAt": {"type": "string"}
            }
        },
        "models.CreateCarouselSlideRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "icon": {"type": "string"},
                "backgroundColor": {"type": "string"},
                "order": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Energy Communities API",
	Description:      "API for energy community applications, news and carousel content",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
