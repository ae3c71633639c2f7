// Package swagger holds the generated OpenAPI document served at /swagger.
package swagger

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
        "/v1/agents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Agents"],
                "summary": "List registered agents",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Agents"],
                "summary": "Register an agent",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/v1/agents/{agent_name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Agents"],
                "summary": "Get an agent by name",
                "parameters": [
                    {"type": "string", "name": "agent_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Agents"],
                "summary": "Remove an agent",
                "parameters": [
                    {"type": "string", "name": "agent_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/agents/{agent_name}/invoke": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Agents"],
                "summary": "Invoke an agent",
                "parameters": [
                    {"type": "string", "name": "agent_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/agents/{agent_name}/tools": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Agents"],
                "summary": "Replace an agent's tool list",
                "parameters": [
                    {"type": "string", "name": "agent_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/tools": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tools"],
                "summary": "List registered tools",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tools"],
                "summary": "Register a tool",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/v1/tools/{tool_name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tools"],
                "summary": "Get a tool by name",
                "parameters": [
                    {"type": "string", "name": "tool_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Tools"],
                "summary": "Remove a tool",
                "parameters": [
                    {"type": "string", "name": "tool_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/tools/{tool_name}/execute": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tools"],
                "summary": "Execute a tool directly",
                "parameters": [
                    {"type": "string", "name": "tool_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/workflows": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "List defined workflows",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "Define a workflow",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/v1/workflows/executions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "List workflow executions",
                "parameters": [
                    {"type": "string", "name": "workflow", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/v1/workflows/{workflow_name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "Get a workflow by name",
                "parameters": [
                    {"type": "string", "name": "workflow_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/workflows/{workflow_name}/execute": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Workflows"],
                "summary": "Execute a workflow",
                "parameters": [
                    {"type": "string", "name": "workflow_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
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

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Agent API",
	Description:      "Orchestrates LLM tool calling, dynamic tool execution, and multi-step workflows.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
