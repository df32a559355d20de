// Package docs registers the OpenAPI description served under /swagger.
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
        "/projects": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Projects"],
                "summary": "Create a project",
                "parameters": [{"in": "body", "name": "project", "required": true, "schema": {"$ref": "#/definitions/handler.ProjectRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.ProjectResponse"}}}
            },
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Projects"],
                "summary": "Projects the current user is a member of",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.ProjectResponse"}}}}
            }
        },
        "/projects/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Projects"],
                "summary": "Get a project with its sections",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ProjectResponse"}},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/projects/{id}/members": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Projects"],
                "summary": "Add a member or change their role",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "member", "required": true, "schema": {"$ref": "#/definitions/handler.MemberRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ProjectResponse"}}}
            }
        },
        "/projects/{id}/sections": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Sections"],
                "summary": "Append a section",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "section", "required": true, "schema": {"$ref": "#/definitions/handler.SectionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.SectionResponse"}}}
            }
        },
        "/projects/{id}/sections/reorder": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Sections"],
                "summary": "Reorder all sections of a project",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "order", "required": true, "schema": {"$ref": "#/definitions/handler.ReorderSectionsRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.SectionResponse"}}}}
            }
        },
        "/projects/{id}/tasks": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "Create a task in a section",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "task", "required": true, "schema": {"$ref": "#/definitions/handler.TaskRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.TaskResponse"}}}
            }
        },
        "/projects/{id}/board/ws": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Board"],
                "summary": "Live board over websocket",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        },
        "/tasks/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "Update task fields",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "fields", "required": true, "schema": {"$ref": "#/definitions/handler.TaskUpdateRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TaskResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tasks/{id}/move": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "Move a task within or across sections",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "move", "required": true, "schema": {"$ref": "#/definitions/handler.TaskMoveRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TaskResponse"}}}
            }
        },
        "/tasks/{id}/like": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "Like a task",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LikeResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "Remove a like",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LikeResponse"}}}
            }
        },
        "/tasks/{id}/attachments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "Attach a file to the task's thread",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "attachment", "required": true, "schema": {"$ref": "#/definitions/handler.AttachmentRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AttachmentResponse"}}}
            }
        },
        "/my-tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["My Tasks"],
                "summary": "Tasks assigned to the current user across projects",
                "parameters": [
                    {"type": "string", "name": "sort", "in": "query", "enum": ["due", "project", "status", "priority"]},
                    {"type": "boolean", "name": "hide_completed", "in": "query"},
                    {"type": "string", "name": "project_id", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MyTasksResponse"}}}
            }
        }
    },
    "definitions": {
        "handler.ProjectRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string", "maxLength": 200}}
        },
        "handler.MemberRequest": {
            "type": "object",
            "required": ["user_id", "role"],
            "properties": {
                "user_id": {"type": "string"},
                "role": {"type": "string", "enum": ["viewer", "editor", "owner"]}
            }
        },
        "handler.MemberResponse": {
            "type": "object",
            "properties": {"user_id": {"type": "string"}, "role": {"type": "string"}}
        },
        "handler.SectionRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {"title": {"type": "string", "maxLength": 100}}
        },
        "handler.ReorderSectionsRequest": {
            "type": "object",
            "required": ["section_ids"],
            "properties": {"section_ids": {"type": "array", "items": {"type": "string"}}}
        },
        "handler.SectionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "order": {"type": "integer"},
                "collapsed": {"type": "boolean"}
            }
        },
        "handler.ProjectResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "owner_id": {"type": "string"},
                "members": {"type": "array", "items": {"$ref": "#/definitions/handler.MemberResponse"}},
                "sections": {"type": "array", "items": {"$ref": "#/definitions/handler.SectionResponse"}},
                "created_at": {"type": "string"}
            }
        },
        "handler.TaskRequest": {
            "type": "object",
            "required": ["name", "section_id"],
            "properties": {
                "name": {"type": "string", "maxLength": 500},
                "section_id": {"type": "string"},
                "position": {"type": "integer", "minimum": 0},
                "priority": {"type": "string", "enum": ["Low", "Medium", "High"]},
                "due_date": {"type": "string", "format": "date-time"},
                "assignees": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.TaskMoveRequest": {
            "type": "object",
            "required": ["section_id", "position"],
            "properties": {
                "section_id": {"type": "string"},
                "position": {"type": "integer", "minimum": 0}
            }
        },
        "handler.TaskUpdateRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "status": {"type": "string", "enum": ["Not Started", "In Progress", "Completed"]},
                "priority": {"type": "string", "enum": ["Low", "Medium", "High"]},
                "due_date": {"type": "string", "format": "date-time"},
                "clear_due_date": {"type": "boolean"},
                "assignees": {"type": "array", "items": {"type": "string"}},
                "custom_fields": {"type": "object", "additionalProperties": true}
            }
        },
        "handler.TaskResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "project_id": {"type": "string"},
                "section_id": {"type": "string"},
                "order": {"type": "integer"},
                "status": {"type": "string"},
                "priority": {"type": "string"},
                "due_date": {"type": "string"},
                "assignees": {"type": "array", "items": {"type": "string"}},
                "like_count": {"type": "integer"},
                "liked": {"type": "boolean"},
                "comment_count": {"type": "integer"}
            }
        },
        "handler.LikeResponse": {
            "type": "object",
            "properties": {
                "liked": {"type": "boolean"},
                "changed": {"type": "boolean"},
                "like_count": {"type": "integer"}
            }
        },
        "handler.AttachmentRequest": {
            "type": "object",
            "required": ["url", "content_type"],
            "properties": {
                "url": {"type": "string"},
                "content_type": {"type": "string"}
            }
        },
        "handler.AttachmentResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "thread_id": {"type": "string"},
                "url": {"type": "string"},
                "content_type": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handler.MyTaskResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "project_id": {"type": "string"},
                "project_name": {"type": "string"},
                "section_id": {"type": "string"},
                "status": {"type": "string"},
                "priority": {"type": "string"},
                "due_date": {"type": "string"},
                "assignees": {"type": "array", "items": {"type": "string"}},
                "like_count": {"type": "integer"}
            }
        },
        "handler.MyTasksResponse": {
            "type": "object",
            "properties": {
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/handler.MyTaskResponse"}},
                "total": {"type": "integer"},
                "dropped": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Taskboard API",
	Description:      "Projects, ordered sections and tasks with a live board over websocket.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
