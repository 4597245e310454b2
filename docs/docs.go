// Package docs registra la especificación OpenAPI que sirve /swagger/*.
// Se regenera con `swag init -g cmd/api/main.go` a partir de las
// anotaciones de los handlers.
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
        "/auth/register": {
            "post": {
                "description": "Crea la cuenta en el identity provider, un shelter nuevo y el perfil del usuario.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Registrar shelter",
                "parameters": [
                    {"description": "Datos de alta", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accounts.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/accounts.sessionResponse"}},
                    "400": {"description": "invalid json / email o password inválidos", "schema": {"type": "string"}},
                    "409": {"description": "email already registered", "schema": {"type": "string"}},
                    "502": {"description": "upstream error", "schema": {"type": "string"}},
                    "503": {"description": "identity provider not configured", "schema": {"type": "string"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credenciales", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accounts.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accounts.sessionResponse"}},
                    "401": {"description": "invalid email or password", "schema": {"type": "string"}},
                    "404": {"description": "profile not found", "schema": {"type": "string"}}
                }
            }
        },
        "/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Perfil del usuario autenticado",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accounts.profileResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "profile not found", "schema": {"type": "string"}}
                }
            }
        },
        "/shelters/{shelterID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Datos del shelter",
                "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "shelterID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accounts.shelterResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "shelter not found", "schema": {"type": "string"}}
                }
            }
        },
        "/shelters/{shelterID}/medications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["medications"],
                "summary": "Listar medicaciones",
                "parameters": [{"type": "string", "name": "shelterID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["medications"],
                "summary": "Crear medicación",
                "parameters": [{"type": "string", "name": "shelterID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "invalid input"}}
            }
        },
        "/shelters/{shelterID}/animals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Listar animales",
                "parameters": [
                    {"type": "string", "name": "shelterID", "in": "path", "required": true},
                    {"type": "boolean", "name": "include_inactive", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Crear animal",
                "parameters": [{"type": "string", "name": "shelterID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "invalid input"}}
            }
        },
        "/shelters/{shelterID}/animals/{animalID}/photo": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Subir foto",
                "parameters": [
                    {"type": "string", "name": "shelterID", "in": "path", "required": true},
                    {"type": "string", "name": "animalID", "in": "path", "required": true},
                    {"type": "file", "name": "photo", "in": "formData", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "503": {"description": "photo storage not configured"}}
            }
        },
        "/shelters/{shelterID}/doses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Listar dosis programadas",
                "parameters": [
                    {"type": "string", "name": "shelterID", "in": "path", "required": true},
                    {"type": "string", "name": "animal_id", "in": "query"},
                    {"type": "boolean", "name": "include_discontinued", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Programar medicación",
                "parameters": [{"type": "string", "name": "shelterID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "invalid input"}, "404": {"description": "animal or medication not found"}}
            }
        },
        "/shelters/{shelterID}/doses/{doseID}/discontinue": {
            "post": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Discontinuar dosis",
                "parameters": [
                    {"type": "string", "name": "shelterID", "in": "path", "required": true},
                    {"type": "string", "name": "doseID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}
            }
        },
        "/shelters/{shelterID}/due": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Dosis del día (o de un rango) con su estado",
                "parameters": [
                    {"type": "string", "name": "shelterID", "in": "path", "required": true},
                    {"type": "string", "name": "animal_id", "in": "query"},
                    {"type": "string", "name": "from", "in": "query", "description": "YYYY-MM-DD"},
                    {"type": "string", "name": "to", "in": "query", "description": "YYYY-MM-DD"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "invalid range"}}
            }
        },
        "/shelters/{shelterID}/dose-logs": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Registrar administración",
                "parameters": [{"type": "string", "name": "shelterID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "dose not found"}, "409": {"description": "already administered"}}
            }
        },
        "/shelters/{shelterID}/animals/{animalID}/dose-logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Historial de administraciones",
                "parameters": [
                    {"type": "string", "name": "shelterID", "in": "path", "required": true},
                    {"type": "string", "name": "animalID", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/shelters/{shelterID}/animals/{animalID}/dose-logs/export": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["schedule"],
                "summary": "Exportar historial a xlsx",
                "parameters": [
                    {"type": "string", "name": "shelterID", "in": "path", "required": true},
                    {"type": "string", "name": "animalID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "accounts.registerRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "display_name": {"type": "string"},
                "shelter_name": {"type": "string"},
                "shelter_address": {"type": "string"}
            }
        },
        "accounts.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "accounts.sessionResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"},
                "user_id": {"type": "string"},
                "email": {"type": "string"},
                "display_name": {"type": "string"},
                "shelter_id": {"type": "string"}
            }
        },
        "accounts.profileResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "email": {"type": "string"},
                "display_name": {"type": "string"},
                "shelter_id": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "accounts.shelterResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "address": {"type": "string"},
                "created_at": {"type": "string"}
            }
        }
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
	Schemes:          []string{},
	Title:            "Shelter Meds API",
	Description:      "Programación y registro de medicación para refugios de animales.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
