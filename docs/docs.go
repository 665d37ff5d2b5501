// Package docs holds the Swagger document served under /swagger/ when the
// server is built with -tags=swagger. Regenerate with
// `swag init -g cmd/memoryd/docs.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/models": {
			"get": {
				"tags": [
					"models"
				],
				"summary": "List model files in the models directory",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.ModelsResponse"
						}
					}
				}
			}
		},
		"/models/load": {
			"post": {
				"tags": [
					"models"
				],
				"summary": "Load a model, replacing the current one",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.StatusResponse"
						}
					},
					"404": {
						"description": "model file not found",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"429": {
						"description": "lifecycle busy",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.LoadRequest"
						}
					}
				]
			}
		},
		"/models/unload": {
			"post": {
				"tags": [
					"models"
				],
				"summary": "Unload the current model",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.StatusResponse"
						}
					}
				}
			}
		},
		"/status": {
			"get": {
				"tags": [
					"models"
				],
				"summary": "Lifecycle and generation status",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.StatusResponse"
						}
					}
				}
			}
		},
		"/gpu": {
			"get": {
				"tags": [
					"models"
				],
				"summary": "GPU availability",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.GPUInfoResponse"
						}
					}
				}
			}
		},
		"/generate": {
			"post": {
				"tags": [
					"generate"
				],
				"summary": "Answer a user message with memory-augmented context",
				"produces": [
					"application/x-ndjson"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.StreamEvent"
						}
					},
					"409": {
						"description": "no model loaded",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"429": {
						"description": "another generation is running",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.GenerateRequest"
						}
					}
				]
			}
		},
		"/generate/stop": {
			"post": {
				"tags": [
					"generate"
				],
				"summary": "Stop the running generation",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.StopResponse"
						}
					}
				}
			}
		},
		"/sessions": {
			"get": {
				"tags": [
					"sessions"
				],
				"summary": "List chat sessions, newest first",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/types.Session"
							}
						}
					}
				}
			},
			"post": {
				"tags": [
					"sessions"
				],
				"summary": "Create a chat session",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Session"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.CreateSessionRequest"
						}
					}
				]
			}
		},
		"/sessions/{id}": {
			"delete": {
				"tags": [
					"sessions"
				],
				"summary": "Delete a session with its messages and their embeddings",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/sessions/{id}/messages": {
			"get": {
				"tags": [
					"sessions"
				],
				"summary": "List the messages of a session, oldest first",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/types.Message"
							}
						}
					},
					"404": {
						"description": "unknown session",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"post": {
				"tags": [
					"sessions"
				],
				"summary": "Save a message",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Message"
						}
					},
					"404": {
						"description": "unknown session",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.CreateMessageRequest"
						}
					},
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/messages/search": {
			"get": {
				"tags": [
					"sessions"
				],
				"summary": "Full-text search across all sessions",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/types.Message"
							}
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "q",
						"in": "query",
						"required": true
					},
					{
						"type": "integer",
						"name": "limit",
						"in": "query"
					}
				]
			}
		},
		"/stats": {
			"get": {
				"tags": [
					"sessions"
				],
				"summary": "Conversation statistics",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.DataStatsResponse"
						}
					}
				}
			}
		},
		"/memories": {
			"get": {
				"tags": [
					"memory"
				],
				"summary": "List memory facts",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/types.Memory"
							}
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "category",
						"in": "query"
					}
				]
			},
			"post": {
				"tags": [
					"memory"
				],
				"summary": "Add a memory fact",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Memory"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.CreateMemoryRequest"
						}
					}
				]
			}
		},
		"/memories/top": {
			"get": {
				"tags": [
					"memory"
				],
				"summary": "Most important memory facts",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/types.Memory"
							}
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "limit",
						"in": "query"
					}
				]
			}
		},
		"/memories/{id}": {
			"delete": {
				"tags": [
					"memory"
				],
				"summary": "Delete a memory fact and its embedding",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"404": {
						"description": "unknown memory",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/persona": {
			"get": {
				"tags": [
					"persona"
				],
				"summary": "Stored persona",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Persona"
						}
					},
					"404": {
						"description": "not analyzed yet",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/persona/analyze": {
			"post": {
				"tags": [
					"persona"
				],
				"summary": "Analyze the user's messages and store the persona",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Persona"
						}
					},
					"409": {
						"description": "no user messages",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/rag/search": {
			"post": {
				"tags": [
					"rag"
				],
				"summary": "Semantic search over messages and memory facts",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.RAGSearchResponse"
						}
					},
					"503": {
						"description": "embedding model unavailable",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.RAGSearchRequest"
						}
					}
				]
			}
		},
		"/index/messages": {
			"post": {
				"tags": [
					"rag"
				],
				"summary": "Index every stored message",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.IndexResponse"
						}
					}
				}
			}
		},
		"/index/stats": {
			"get": {
				"tags": [
					"rag"
				],
				"summary": "Embedding statistics",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.IndexStatsResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"types.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"code": {
					"type": "integer"
				}
			}
		},
		"types.Model": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"path": {
					"type": "string"
				},
				"size_bytes": {
					"type": "integer"
				},
				"loaded": {
					"type": "boolean"
				}
			}
		},
		"types.ModelsResponse": {
			"type": "object",
			"properties": {
				"models": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/types.Model"
					}
				}
			}
		},
		"types.LoadRequest": {
			"type": "object",
			"properties": {
				"path": {
					"type": "string"
				},
				"model": {
					"type": "string"
				},
				"context_length": {
					"type": "integer"
				}
			}
		},
		"types.StatusResponse": {
			"type": "object",
			"properties": {
				"state": {
					"type": "string"
				},
				"path": {
					"type": "string"
				},
				"context_length": {
					"type": "integer"
				},
				"gpu_layers": {
					"type": "integer"
				},
				"capability": {
					"type": "string"
				},
				"generating": {
					"type": "boolean"
				},
				"last_error": {
					"type": "string"
				},
				"loaded_at_unix": {
					"type": "integer"
				},
				"uptime_seconds": {
					"type": "integer"
				},
				"server_time_unix": {
					"type": "integer"
				},
				"loads_total": {
					"type": "integer"
				}
			}
		},
		"types.GPUInfoResponse": {
			"type": "object",
			"properties": {
				"available": {
					"type": "boolean"
				},
				"backend": {
					"type": "string"
				},
				"runtime": {
					"type": "string"
				}
			}
		},
		"types.Turn": {
			"type": "object",
			"properties": {
				"role": {
					"type": "string"
				},
				"content": {
					"type": "string"
				}
			}
		},
		"types.GenerateRequest": {
			"type": "object",
			"properties": {
				"prompt": {
					"type": "string"
				},
				"session_id": {
					"type": "integer"
				},
				"history": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/types.Turn"
					}
				},
				"system_prompt": {
					"type": "string"
				},
				"temperature": {
					"type": "number"
				},
				"max_tokens": {
					"type": "integer"
				},
				"raw": {
					"type": "boolean"
				}
			}
		},
		"types.StreamEvent": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"fragment": {
					"type": "string"
				},
				"finished": {
					"type": "boolean"
				},
				"reason": {
					"type": "string"
				},
				"tokens": {
					"type": "integer"
				},
				"error": {
					"type": "string"
				},
				"sections": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"types.StopResponse": {
			"type": "object",
			"properties": {
				"generating": {
					"type": "boolean"
				}
			}
		},
		"types.Session": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"title": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"message_count": {
					"type": "integer"
				}
			}
		},
		"types.Message": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"session_id": {
					"type": "integer"
				},
				"content": {
					"type": "string"
				},
				"is_user": {
					"type": "boolean"
				},
				"timestamp": {
					"type": "string"
				},
				"session_title": {
					"type": "string"
				}
			}
		},
		"types.CreateSessionRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				}
			}
		},
		"types.CreateMessageRequest": {
			"type": "object",
			"properties": {
				"content": {
					"type": "string"
				},
				"is_user": {
					"type": "boolean"
				}
			}
		},
		"types.Memory": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"content": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"source_session_id": {
					"type": "integer"
				},
				"source_message_id": {
					"type": "integer"
				},
				"importance": {
					"type": "integer"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"types.CreateMemoryRequest": {
			"type": "object",
			"properties": {
				"content": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"importance": {
					"type": "integer"
				},
				"source_session_id": {
					"type": "integer"
				},
				"source_message_id": {
					"type": "integer"
				}
			}
		},
		"types.Persona": {
			"type": "object",
			"properties": {
				"writing_style": {
					"type": "string"
				},
				"avg_message_length": {
					"type": "number"
				},
				"common_phrases": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"topics_of_interest": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"language": {
					"type": "string"
				},
				"emoji_usage": {
					"type": "string"
				},
				"tone": {
					"type": "string"
				},
				"messages_analyzed": {
					"type": "integer"
				},
				"last_updated": {
					"type": "string"
				},
				"summary": {
					"type": "string"
				}
			}
		},
		"types.RAGSearchRequest": {
			"type": "object",
			"properties": {
				"query": {
					"type": "string"
				},
				"limit": {
					"type": "integer"
				},
				"min_similarity": {
					"type": "number"
				}
			}
		},
		"types.RAGHit": {
			"type": "object",
			"properties": {
				"source_kind": {
					"type": "string"
				},
				"source_id": {
					"type": "integer"
				},
				"content": {
					"type": "string"
				},
				"similarity": {
					"type": "number"
				}
			}
		},
		"types.RAGSearchResponse": {
			"type": "object",
			"properties": {
				"hits": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/types.RAGHit"
					}
				}
			}
		},
		"types.IndexResponse": {
			"type": "object",
			"properties": {
				"indexed": {
					"type": "integer"
				}
			}
		},
		"types.IndexStatsResponse": {
			"type": "object",
			"properties": {
				"total": {
					"type": "integer"
				},
				"by_kind": {
					"type": "object",
					"additionalProperties": {
						"type": "integer"
					}
				},
				"dimension": {
					"type": "integer"
				},
				"embedder": {
					"type": "string"
				}
			}
		},
		"types.DataStatsResponse": {
			"type": "object",
			"properties": {
				"sessions": {
					"type": "integer"
				},
				"messages": {
					"type": "integer"
				},
				"user_messages": {
					"type": "integer"
				},
				"assistant_messages": {
					"type": "integer"
				},
				"memories": {
					"type": "integer"
				},
				"characters": {
					"type": "integer"
				},
				"estimated_tokens": {
					"type": "integer"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "memoryd API",
	Description:      "Local assistant backend: model lifecycle, memory-augmented streaming generation, conversations and semantic memory.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
