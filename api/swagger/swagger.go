package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Feedback Request API",
        "description": "Multi-party feedback request workflow: creation, PDM review and appraiser answers",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "FeedbackRequests", "description": "Feedback request lifecycle"},
        {"name": "Notifications", "description": "Email notification triggers"}
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
        "/feedback-requests": {
            "get": {
                "tags": ["FeedbackRequests"],
                "summary": "List feedback requests",
                "parameters": [
                    {"name": "filter", "in": "query", "type": "string", "enum": ["approved", "pending"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["FeedbackRequests"],
                "summary": "Create feedback request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFeedbackRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"},
                    "409": {"description": "Duplicate appraiser"}
                }
            }
        },
        "/feedback-requests/requester/{requesterId}": {
            "get": {
                "tags": ["FeedbackRequests"],
                "summary": "List feedback requests by requester",
                "parameters": [
                    {"name": "requesterId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No feedback requests found"}
                }
            }
        },
        "/feedback-requests/{id}": {
            "delete": {
                "tags": ["FeedbackRequests"],
                "summary": "Delete a feedback request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/feedback-requests/{id}/form": {
            "get": {
                "tags": ["FeedbackRequests"],
                "summary": "Appraisal form projection",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/feedback-requests/{id}/review": {
            "put": {
                "tags": ["FeedbackRequests"],
                "summary": "Approve or reject a feedback request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewFeedbackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Insufficient questions or appraisers"}
                }
            }
        },
        "/feedback-requests/{id}/answers": {
            "post": {
                "tags": ["FeedbackRequests"],
                "summary": "Submit an appraiser answer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Request already approved"},
                    "410": {"description": "Request expired"}
                }
            }
        },
        "/feedback-requests/{id}/appraisers": {
            "post": {
                "tags": ["FeedbackRequests"],
                "summary": "Invite an appraiser",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddAppraiserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Internal collaborator email"},
                    "409": {"description": "Duplicate appraiser"}
                }
            }
        },
        "/feedback-requests/{id}/appraisers/{email}": {
            "delete": {
                "tags": ["FeedbackRequests"],
                "summary": "Remove an appraiser and their answers",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "email", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedback-requests/{id}/questions": {
            "post": {
                "tags": ["FeedbackRequests"],
                "summary": "Append a question",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedback-requests/{id}/questions/{index}": {
            "put": {
                "tags": ["FeedbackRequests"],
                "summary": "Replace a question's text",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "index", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["FeedbackRequests"],
                "summary": "Remove a question",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedback-requests/{id}/notify-pdm": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Resend the approval notification to the requester's PDM",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Queued"}
                }
            }
        },
        "/feedback-requests/{id}/notify-appraisers": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Send invitation emails to every appraiser",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Queued"}
                }
            }
        },
        "/feedback-requests/{id}/export": {
            "get": {
                "tags": ["FeedbackRequests"],
                "summary": "Export collected answers",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/pdm/feedback-requests": {
            "get": {
                "tags": ["FeedbackRequests"],
                "summary": "List feedback requests awaiting the caller's review",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateFeedbackRequest": {
            "type": "object",
            "required": ["questions", "appraiserEmails"],
            "properties": {
                "questions": {"type": "array", "items": {"type": "string"}},
                "appraiserEmails": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ReviewFeedbackRequest": {
            "type": "object",
            "required": ["approved"],
            "properties": {
                "approved": {"type": "boolean"},
                "rejectMessage": {"type": "string"}
            }
        },
        "SubmitAnswerRequest": {
            "type": "object",
            "required": ["appraiserEmail", "text"],
            "properties": {
                "appraiserEmail": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "AddAppraiserRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "QuestionRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string"}
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
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
