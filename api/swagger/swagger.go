package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Schedule API",
        "description": "Day-by-day class scheduling backend for a tutoring academy.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Time Slots", "description": "Fixed daily time grid"},
        {"name": "Teachers", "description": "Date-scoped teacher roster"},
        {"name": "Students", "description": "Date-scoped student roster"},
        {"name": "Assignments", "description": "Class assignments per day"},
        {"name": "Days", "description": "Whole-day operations"},
        {"name": "Copy", "description": "Schedule duplication between dates"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/v1/time-slots": {
            "get": {
                "tags": ["Time Slots"],
                "summary": "List time slots in grid order",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers for a date",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "include_inactive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/teachers/find-or-create": {
            "post": {
                "tags": ["Teachers"],
                "summary": "Find a teacher by name for a date, creating or reactivating as needed",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Teachers"],
                "summary": "Update teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teachers"],
                "summary": "Deactivate teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students for a date",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "include_inactive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/assignments": {
            "get": {
                "tags": ["Students"],
                "summary": "List active assignments referencing a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments for a date",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Double-booking conflict"}
                }
            }
        },
        "/api/v1/assignments/range": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments for a run of days",
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "days", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/assignments/validate": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Check a draft assignment for double-booking without persisting",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Validation result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/assignments/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Assignments"],
                "summary": "Patch assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Double-booking conflict"}
                }
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Soft-delete assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/assignments/{id}/restore": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Restore a soft-deleted assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/days/{date}/assignments": {
            "delete": {
                "tags": ["Days"],
                "summary": "Soft-delete every assignment on a date",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/days/{date}/export.csv": {
            "get": {
                "tags": ["Days"],
                "summary": "Export a day schedule as CSV",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/api/v1/days/{date}/export.pdf": {
            "get": {
                "tags": ["Days"],
                "summary": "Export a day schedule as PDF",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/api/v1/schedule/copy-day": {
            "post": {
                "tags": ["Copy"],
                "summary": "Overwrite a target date with a source date's schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CopyRequest"}}
                ],
                "responses": {
                    "200": {"description": "Copy summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule/copy-week": {
            "post": {
                "tags": ["Copy"],
                "summary": "Copy a Monday-anchored week onto another week",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CopyRequest"}}
                ],
                "responses": {
                    "200": {"description": "Copy summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateTeacherRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "date": {"type": "string"},
                "availability": {"type": "array", "items": {"type": "integer"}},
                "color_keyword": {"type": "string"}
            },
            "required": ["full_name", "date"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "display_name": {"type": "string"},
                "date": {"type": "string"},
                "availability": {"type": "array", "items": {"type": "integer"}},
                "weakness": {"type": "string"}
            },
            "required": ["full_name", "date"]
        },
        "TeacherLinkRequest": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "is_substitute": {"type": "boolean"}
            },
            "required": ["teacher_id"]
        },
        "StudentLinkRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "submission_id": {"type": "string"}
            },
            "required": ["student_id"]
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "time_slot_id": {"type": "integer"},
                "teachers": {"type": "array", "items": {"$ref": "#/definitions/TeacherLinkRequest"}},
                "students": {"type": "array", "items": {"$ref": "#/definitions/StudentLinkRequest"}}
            },
            "required": ["date", "time_slot_id"]
        },
        "ValidateAssignmentRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "date": {"type": "string"},
                "time_slot_id": {"type": "integer"},
                "teachers": {"type": "array", "items": {"$ref": "#/definitions/TeacherLinkRequest"}},
                "students": {"type": "array", "items": {"$ref": "#/definitions/StudentLinkRequest"}}
            },
            "required": ["date", "time_slot_id"]
        },
        "UpdateAssignmentRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "time_slot_id": {"type": "integer"},
                "teachers": {"type": "array", "items": {"$ref": "#/definitions/TeacherLinkRequest"}},
                "students": {"type": "array", "items": {"$ref": "#/definitions/StudentLinkRequest"}}
            }
        },
        "CopyRequest": {
            "type": "object",
            "properties": {
                "source_date": {"type": "string"},
                "target_date": {"type": "string"}
            },
            "required": ["source_date", "target_date"]
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
