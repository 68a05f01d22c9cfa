package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Placement Portal API",
        "description": "Advisor cohort resolution and performance analytics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "HOD", "description": "Department analytics for heads of department"},
        {"name": "Staff", "description": "Advisor views of their own cohort"},
        {"name": "Admin", "description": "Advisor assignment and system metrics"},
        {"name": "Leaderboard", "description": "Student ranking"}
    ],
    "paths": {
        "/leaderboard": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Ranked student leaderboard",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/staff/cohort": {
            "get": {
                "tags": ["Staff"],
                "summary": "The caller's own class analysis",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hod/stats": {
            "get": {
                "tags": ["HOD"],
                "summary": "Department statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hod/students": {
            "get": {
                "tags": ["HOD"],
                "summary": "Department roster ordered by registration number",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hod/analytics": {
            "get": {
                "tags": ["HOD"],
                "summary": "Metrics of the whole department taken as one cohort",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hod/advisors": {
            "get": {
                "tags": ["HOD"],
                "summary": "Performance of every advisor in the department",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hod/advisors/{id}/performance": {
            "get": {
                "tags": ["HOD"],
                "summary": "Cohort metrics of one advisor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Advisor outside the caller's department", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Advisor not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/hod/advisors/{id}/students": {
            "get": {
                "tags": ["HOD"],
                "summary": "Students resolved from an advisor's assignment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hod/advisors/{id}/analysis": {
            "get": {
                "tags": ["HOD"],
                "summary": "Detailed class analysis of an advisor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hod/advisors/{id}/report": {
            "get": {
                "tags": ["HOD"],
                "summary": "Download a class report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}},
                    "404": {"description": "Reports disabled or advisor not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/hod/compare": {
            "post": {
                "tags": ["HOD"],
                "summary": "Compare two advisors side by side",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CompareRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "One side not selected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/advisors": {
            "get": {
                "tags": ["Admin"],
                "summary": "List advisors with their assignments",
                "parameters": [{"name": "department", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/advisors/{id}/assignment": {
            "put": {
                "tags": ["Admin"],
                "summary": "Assign a registration number range and extras to an advisor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignAdvisorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid assignment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlaps another advisor", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/leaderboard/cache": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Drop the cached leaderboard so the next read recomputes it",
                "responses": {"204": {"description": "Invalidated"}}
            }
        },
        "/admin/system": {
            "get": {
                "tags": ["Admin"],
                "summary": "Running request, database and cache totals",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "CompareRequest": {
            "type": "object",
            "properties": {
                "class_a": {"type": "string", "description": "Advisor ID"},
                "class_b": {"type": "string", "description": "Advisor ID"}
            }
        },
        "AssignAdvisorRequest": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "21CS001"},
                "end": {"type": "string", "example": "21CS060"},
                "extras": {"type": "string", "example": "21CS099,21CS102"}
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
