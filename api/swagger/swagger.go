package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Registration API",
        "description": "Enrollment admission engine: admits, waitlists or rejects section enrollment requests.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Access tokens"},
        {"name": "Enrollment", "description": "Section admission decisions"},
        {"name": "Sections", "description": "Availability, waitlists and rosters"},
        {"name": "Students", "description": "A student's registrations and waitlist entries"},
        {"name": "Observability", "description": "Process metrics"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enroll": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Enroll a student into a section",
                "description": "Admits the student, places them on the waitlist when the section is full, or rejects the request.",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Enrolled", "schema": {"$ref": "#/definitions/EnrollmentCreated"}},
                    "200": {"description": "Waitlisted or already waitlisted", "schema": {"$ref": "#/definitions/WaitlistPlacement"}},
                    "400": {"description": "Already registered or invalid request", "schema": {"$ref": "#/definitions/EnrollmentRejected"}},
                    "403": {"description": "Students may only enroll themselves", "schema": {"$ref": "#/definitions/EnrollmentRejected"}},
                    "404": {"description": "Section not found", "schema": {"$ref": "#/definitions/EnrollmentFailure"}},
                    "409": {"description": "Time clash detected", "schema": {"$ref": "#/definitions/EnrollmentRejected"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/EnrollmentFailure"}},
                    "503": {"description": "Server busy, retry", "schema": {"$ref": "#/definitions/EnrollmentFailure"}}
                }
            }
        },
        "/sections/{id}": {
            "get": {
                "tags": ["Sections"],
                "summary": "Section detail with courses and schedules",
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/availability": {
            "get": {
                "tags": ["Sections"],
                "summary": "Seat availability",
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/waitlist": {
            "get": {
                "tags": ["Sections"],
                "summary": "Ordered waitlist of a section",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/roster": {
            "get": {
                "tags": ["Sections"],
                "summary": "Export section roster",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Roster file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/registrations": {
            "get": {
                "tags": ["Students"],
                "summary": "Registrations of a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "query", "name": "termId", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/waitlists": {
            "get": {
                "tags": ["Students"],
                "summary": "Waitlist entries of a student with positions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Process metrics snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "required": ["studentId", "sectionId"],
            "properties": {
                "studentId": {"type": "string"},
                "sectionId": {"type": "integer"}
            }
        },
        "Registration": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "studentId": {"type": "string"},
                "sectionId": {"type": "integer"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "WaitlistEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "studentId": {"type": "string"},
                "sectionId": {"type": "integer"},
                "sequence": {"type": "integer"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "ClashReport": {
            "type": "object",
            "properties": {
                "courseCode": {"type": "string"},
                "courseTitle": {"type": "string"},
                "day": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "EnrollmentCreated": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "enrollment": {"$ref": "#/definitions/Registration"}
            }
        },
        "WaitlistPlacement": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "waitlistPosition": {"type": "integer"},
                "waitlistEntry": {"$ref": "#/definitions/WaitlistEntry"}
            }
        },
        "EnrollmentRejected": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "clashes": {"type": "array", "items": {"$ref": "#/definitions/ClashReport"}}
            }
        },
        "EnrollmentFailure": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
