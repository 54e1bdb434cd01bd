// Package docs holds the Swagger document served at /swagger.
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
        "/quote/{symbols}": {
            "get": {
                "description": "Real-time quotes for a comma separated list of symbols. Failed symbols carry an error entry.",
                "produces": ["application/json"],
                "tags": ["Market"],
                "summary": "Get quotes",
                "parameters": [
                    {"type": "string", "description": "Comma separated symbols, e.g. AAPL,MSFT", "name": "symbols", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Aggregate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Every symbol failed", "schema": {"$ref": "#/definitions/Aggregate"}}
                }
            }
        },
        "/history/{symbols}": {
            "get": {
                "description": "Historical candles per symbol, in the order the symbols were given.",
                "produces": ["application/json"],
                "tags": ["Market"],
                "summary": "Get price history",
                "parameters": [
                    {"type": "string", "description": "Comma separated symbols", "name": "symbols", "in": "path", "required": true},
                    {"type": "string", "default": "1mo", "description": "1d,5d,1mo,3mo,6mo,1y,2y,5y,10y,ytd,max", "name": "period", "in": "query"},
                    {"type": "string", "default": "1d", "description": "1m,2m,5m,15m,30m,60m,90m,1h,1d,5d,1wk,1mo,3mo", "name": "interval", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Outcome"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Every symbol failed", "schema": {"type": "array", "items": {"$ref": "#/definitions/Outcome"}}}
                }
            }
        },
        "/search/{query}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Market"],
                "summary": "Search",
                "parameters": [
                    {"type": "string", "description": "Search text", "name": "query", "in": "path", "required": true},
                    {"type": "integer", "default": 6, "description": "Maximum symbol matches", "name": "quotesCount", "in": "query"},
                    {"type": "integer", "default": 4, "description": "Maximum news items", "name": "newsCount", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/trending/{regions}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Market"],
                "summary": "Get trending symbols",
                "parameters": [
                    {"type": "string", "description": "Comma separated region codes, e.g. US,GB", "name": "regions", "in": "path", "required": true},
                    {"type": "integer", "default": 10, "description": "Symbols per region", "name": "count", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Aggregate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Every region failed", "schema": {"$ref": "#/definitions/Aggregate"}}
                }
            }
        },
        "/recommendations/{symbols}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Research"],
                "summary": "Get recommendations",
                "parameters": [
                    {"type": "string", "description": "Comma separated symbols", "name": "symbols", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Aggregate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Every symbol failed", "schema": {"$ref": "#/definitions/Aggregate"}}
                }
            }
        },
        "/insights/{symbols}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Research"],
                "summary": "Get insights",
                "parameters": [
                    {"type": "string", "description": "Comma separated symbols", "name": "symbols", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Aggregate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Every symbol failed", "schema": {"$ref": "#/definitions/Aggregate"}}
                }
            }
        },
        "/screener/{type}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Market"],
                "summary": "Run screener",
                "parameters": [
                    {
                        "enum": ["day_gainers", "day_losers", "most_actives", "aggressive_small_caps", "growth_technology_stocks", "undervalued_growth_stocks", "undervalued_large_caps", "small_cap_gainers", "most_shorted_stocks"],
                        "type": "string", "description": "Screener type", "name": "type", "in": "path", "required": true
                    },
                    {"type": "integer", "default": 25, "description": "Maximum results", "name": "count", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "Aggregate": {
            "type": "object",
            "additionalProperties": {"$ref": "#/definitions/Outcome"}
        },
        "Outcome": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"type": "string"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Finance Gateway API",
	Description:      "Aggregated market data with per-symbol error reporting and response caching.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
