package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Instructor Directory API",
        "description": "Driving instructor registration, proximity search and priority listings",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Instructors", "description": "Directory listings, search and profile maintenance"},
        {"name": "Authentication", "description": "Instructor login"},
        {"name": "Settings", "description": "Runtime directory settings"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate an instructor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List instructors matching column filters",
                "description": "Other query parameters (fino, name, gender, email, website, status, offer, priority, active) are equality filters.",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "active_only", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/InstructorList"}},
                    "400": {"description": "Unknown filter column", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Instructors"],
                "summary": "Register an instructor",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterInstructorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Franchise number taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/search/closest": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Find instructors near a postcode",
                "parameters": [
                    {"name": "postcode", "in": "query", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "cover", "in": "query", "type": "boolean"},
                    {"name": "offer", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/InstructorList"}}
                }
            }
        },
        "/instructors/search/area": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Find instructors covering a postcode area",
                "parameters": [
                    {"name": "postcode", "in": "query", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offer", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/InstructorList"}}
                }
            }
        },
        "/instructors/all": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List every instructor by active flag",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/InstructorList"}}
                }
            }
        },
        "/instructors/export": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Download the directory",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/instructors/priority/sweep": {
            "post": {
                "tags": ["Instructors"],
                "summary": "Clear expired priority slots now",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/{fino}": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Get an instructor",
                "parameters": [
                    {"name": "fino", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Instructors"],
                "summary": "Update any instructor field",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "fino", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateInstructorRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/{fino}/testimonials": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Random testimonials for an instructor",
                "parameters": [
                    {"name": "fino", "in": "path", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Testimonials are not displayed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/{fino}/profile": {
            "put": {
                "tags": ["Instructors"],
                "summary": "Update personal information",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "fino", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePersonalInformationRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"},
                    "403": {"description": "Not your profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/{fino}/location": {
            "put": {
                "tags": ["Instructors"],
                "summary": "Geocode and store an instructor location",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "fino", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Postcode could not be located", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/{fino}/priority": {
            "post": {
                "tags": ["Instructors"],
                "summary": "Start a priority slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "fino", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Priority set"}
                }
            }
        },
        "/settings/{key}": {
            "get": {
                "tags": ["Settings"],
                "summary": "Read a setting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "key", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Change a setting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "key", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SettingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["fino", "password"],
            "properties": {
                "fino": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "InstructorExtra": {
            "type": "object",
            "properties": {
                "about": {"type": "string"},
                "offers": {"type": "string"},
                "notes": {"type": "string"},
                "postcodes": {"type": "array", "items": {"type": "string"}},
                "offer": {"type": "boolean"},
                "status": {"type": "integer", "enum": [0, 1, 2, 3, 4]},
                "active": {"type": "boolean"}
            }
        },
        "RegisterInstructorRequest": {
            "type": "object",
            "required": ["fino", "name", "email", "password"],
            "properties": {
                "fino": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "website": {"type": "string"},
                "gender": {"type": "string"},
                "password": {"type": "string"},
                "extra": {"$ref": "#/definitions/InstructorExtra"}
            }
        },
        "UpdatePersonalInformationRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "website": {"type": "string"},
                "gender": {"type": "string"},
                "about": {"type": "string"},
                "offers": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "UpdateInstructorRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "website": {"type": "string"},
                "gender": {"type": "string"},
                "password": {"type": "string"},
                "about": {"type": "string"},
                "offers": {"type": "string"},
                "notes": {"type": "string"},
                "postcodes": {"type": "array", "items": {"type": "string"}},
                "offer": {"type": "boolean"},
                "status": {"type": "integer", "enum": [0, 1, 2, 3, 4]},
                "active": {"type": "boolean"}
            }
        },
        "LocationRequest": {
            "type": "object",
            "properties": {
                "postcode": {"type": "string"}
            }
        },
        "SettingRequest": {
            "type": "object",
            "required": ["value"],
            "properties": {
                "value": {"type": "string"}
            }
        },
        "Testimonial": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "fino": {"type": "integer"},
                "testimonial": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "Instructor": {
            "type": "object",
            "properties": {
                "fino": {"type": "integer"},
                "name": {"type": "string"},
                "first_name": {"type": "string"},
                "gender": {"type": "string"},
                "email": {"type": "string"},
                "website": {"type": "string"},
                "postcodes": {"type": "string"},
                "postcodes_display": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "distance": {"type": "number"},
                "active": {"type": "boolean"},
                "status": {"type": "integer"},
                "priority": {"type": "boolean"},
                "priority_start": {"type": "string", "format": "date-time"},
                "offer": {"type": "boolean"},
                "notes": {"type": "string"},
                "about": {"type": "string"},
                "offers": {"type": "string"},
                "testimonials": {"type": "array", "items": {"$ref": "#/definitions/Testimonial"}}
            }
        },
        "InstructorList": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Instructor"}},
                "meta": {"type": "object", "properties": {"count": {"type": "integer"}}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
