// Package docs registers the OpenAPI document for the grove HTTP API. It is
// regenerated with `swag init -g cmd/grove/docs.go -o docs` and served under
// /swagger/ when built with -tags=swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "grove maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Liveness",
                "responses": {
                    "200": {"description": "ok", "schema": {"type": "string"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "200 once the model is loaded, 503 with the current state otherwise.",
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Readiness",
                "responses": {
                    "200": {"description": "ready", "schema": {"type": "string"}},
                    "503": {"description": "loading", "schema": {"type": "string"}}
                }
            }
        },
        "/status": {
            "get": {
                "description": "Lifecycle state, readiness, artifacts and queue counters.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        },
        "/labels": {
            "get": {
                "description": "Classes the loaded model predicts, in output order.",
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Class labels",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LabelsResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/predict": {
            "post": {
                "description": "Accepts a multipart upload (field \"file\" or \"image\") or a raw image body\nand returns the most likely class with its confidence.",
                "consumes": ["multipart/form-data", "image/jpeg", "image/png"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Classify an image",
                "parameters": [
                    {"type": "file", "description": "Image file (jpeg, png, gif, webp, bmp)", "name": "file", "in": "formData"},
                    {"type": "integer", "description": "Also return the k best classes", "name": "top_k", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.Artifact": {
            "type": "object",
            "properties": {
                "downloaded": {"type": "boolean"},
                "name": {"type": "string", "example": "model"},
                "path": {"type": "string", "example": "/var/lib/grove/plant-resnet18.onnx"},
                "size_bytes": {"type": "integer", "example": 46827520},
                "url": {"type": "string", "example": "https://example.com/plant-resnet18.onnx"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 415},
                "error": {"type": "string", "example": "unsupported media type: text/plain"},
                "kind": {"type": "string", "example": "unsupported_media_type"}
            }
        },
        "types.Label": {
            "type": "object",
            "properties": {
                "description": {"type": "string", "example": "Late blight, caused by Phytophthora infestans."},
                "index": {"type": "integer", "example": 3},
                "name": {"type": "string", "example": "Tomato___Late_blight"}
            }
        },
        "types.LabelsResponse": {
            "type": "object",
            "properties": {
                "labels": {"type": "array", "items": {"$ref": "#/definitions/types.Label"}}
            }
        },
        "types.Prediction": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number", "example": 0.93},
                "label": {"type": "string", "example": "Tomato___Late_blight"}
            }
        },
        "types.PredictResponse": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number", "example": 0.93},
                "description": {"type": "string"},
                "duration_ms": {"type": "integer", "example": 42},
                "id": {"type": "string", "example": "6f1c3f0e-5b7a-4c59-9b71-9a0c3c1f8a2d"},
                "label": {"type": "string", "example": "Tomato___Late_blight"},
                "media_type": {"type": "string", "example": "image/jpeg"},
                "model": {"type": "string", "example": "plant-resnet18.onnx"},
                "predictions": {"type": "array", "items": {"$ref": "#/definitions/types.Prediction"}}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "artifacts": {"type": "array", "items": {"$ref": "#/definitions/types.Artifact"}},
                "inflight": {"type": "integer", "example": 1},
                "last_error": {"type": "string"},
                "max_queue_depth": {"type": "integer", "example": 32},
                "num_classes": {"type": "integer", "example": 38},
                "predictions_total": {"type": "integer", "example": 120},
                "queue_len": {"type": "integer", "example": 0},
                "ready": {"type": "boolean", "example": true},
                "server_time_unix": {"type": "integer", "example": 1700000000},
                "state": {"type": "string", "example": "ready"},
                "uptime_seconds": {"type": "integer", "example": 3600}
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
	Title:            "grove API",
	Description:      "Plant leaf image classification: upload an image, get the most likely condition.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
