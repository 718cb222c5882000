// Package docs registers the OpenAPI document served under /swagger.
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
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Service and database health",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["session"],
                "summary": "Caller email and resolved roles",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/applicants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["session"],
                "summary": "Registered applicants",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/applications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["applications"],
                "summary": "List applications",
                "description": "Callers without an approver role only see their own applications.",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "per_page", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "department", "in": "query"},
                    {"type": "string", "name": "search_term", "in": "query"},
                    {"type": "string", "name": "sort_by", "in": "query"},
                    {"type": "string", "name": "sort_dir", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid filter"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["applications"],
                "summary": "Submit a work permit request",
                "parameters": [
                    {"name": "application", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplicationInput"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed"},
                    "403": {"description": "Caller may not submit"},
                    "500": {"description": "Approver not configured"}
                }
            }
        },
        "/applications/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["applications"],
                "summary": "Application with its decision log",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/applications/{id}/approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["applications"],
                "summary": "Approve or reject the current stage",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "decision", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Decision"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Malformed decision"},
                    "403": {"description": "Caller is not the approver for this stage"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Already finalized or changed concurrently"}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Status counts and recent decisions",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Administrator access required"}
                }
            }
        },
        "/admin/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/csv"],
                "tags": ["admin"],
                "summary": "Export applications and decisions",
                "parameters": [
                    {"enum": ["xlsx", "csv"], "type": "string", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Attachment"},
                    "400": {"description": "Unknown format"}
                }
            }
        },
        "/admin/applications/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Delete an application and its decision log",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/jobs/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Notification worker statistics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "ApplicationInput": {
            "type": "object",
            "required": ["applicant_name", "department", "work_area", "work_content", "work_time_start", "work_time_end", "hazard_factors"],
            "properties": {
                "applicant_name": {"type": "string"},
                "applicant_email": {"type": "string"},
                "department": {"type": "string"},
                "work_area": {"type": "string"},
                "work_content": {"type": "string"},
                "work_time_start": {"type": "string", "example": "2026-10-14T08:00"},
                "work_time_end": {"type": "string", "example": "2026-10-14T12:00"},
                "hazard_factors": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "hazard_factors_description": {"type": "string"},
                "other_hazard_factors_description": {"type": "string"},
                "hazardous_operations": {"type": "object"},
                "personnel_info": {"type": "object"}
            }
        },
        "Decision": {
            "type": "object",
            "required": ["approver_email", "action"],
            "properties": {
                "approver_email": {"type": "string"},
                "action": {"type": "string", "enum": ["approve", "reject"]},
                "comment": {"type": "string"},
                "fire_watcher_name": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Work Permit API",
	Description:      "Submission and three-stage approval of hazardous work permits",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
