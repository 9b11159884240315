package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Learner Grades API",
        "description": "Weighted learner averages for a course assignment group",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "LearnerData", "description": "Learner score aggregation and reports"},
        {"name": "Observability", "description": "Health and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Learner data metrics summary",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Metrics disabled"}
                }
            }
        },
        "/api/v1/learner-data": {
            "post": {
                "tags": ["LearnerData"],
                "summary": "Compute learner weighted averages",
                "description": "Validates the course, assignment group and submissions, then scores every learner on assignments already due. Late submissions lose 10% of the points possible.",
                "consumes": ["application/json"],
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LearnerDataRequest"}},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]},
                    {"name": "at", "in": "query", "type": "string", "description": "Evaluation time (YYYY-MM-DD or RFC 3339)"}
                ],
                "responses": {
                    "200": {"description": "Learner summaries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed payload or query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Request body too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Course mismatch or invalid score", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/learner-data/sample": {
            "get": {
                "tags": ["LearnerData"],
                "summary": "Score the built-in sample course",
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]},
                    {"name": "at", "in": "query", "type": "string", "description": "Evaluation time (YYYY-MM-DD or RFC 3339)"}
                ],
                "responses": {
                    "200": {"description": "Learner summaries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "Assignment": {
            "type": "object",
            "required": ["due_at", "points_possible"],
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "due_at": {"type": "string", "example": "2023-01-25"},
                "points_possible": {"type": "number"}
            }
        },
        "AssignmentGroup": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "course_id": {"type": "integer"},
                "group_weight": {"type": "number"},
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/Assignment"}}
            }
        },
        "Submission": {
            "type": "object",
            "properties": {
                "learner_id": {"type": "integer"},
                "assignment_id": {"type": "integer"},
                "submission": {
                    "type": "object",
                    "properties": {
                        "submitted_at": {"type": "string", "example": "2023-01-24"},
                        "score": {"type": "number"}
                    }
                }
            }
        },
        "LearnerDataRequest": {
            "type": "object",
            "properties": {
                "course": {"$ref": "#/definitions/Course"},
                "assignment_group": {"$ref": "#/definitions/AssignmentGroup"},
                "submissions": {"type": "array", "items": {"$ref": "#/definitions/Submission"}},
                "evaluate_at": {"type": "string"}
            }
        },
        "LearnerResult": {
            "type": "object",
            "description": "id, avg (fraction of 1) and one percentage per scored assignment id",
            "properties": {
                "id": {"type": "integer"},
                "avg": {"type": "number"}
            },
            "additionalProperties": {"type": "number"}
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
                "data": {"type": "array", "items": {"$ref": "#/definitions/LearnerResult"}},
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
