package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the API description.
// - GET /swagger/index.html  -> Swagger UI loading the document below
// - GET /swagger/doc.json    -> OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>resumefire API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "resumefire", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } },
    "schemas": {
      "Document": { "type": "object", "properties": {
        "versionId": {"type":"string"}, "createdAt": {"type":"string","format":"date-time"},
        "userId": {"type":"string"}, "username": {"type":"string"}, "templateId": {"type":"string"},
        "isPublished": {"type":"boolean"}, "personalInfo": {"type":"object"}, "summary": {"type":"string"},
        "experience": {"type":"array","items":{"type":"object"}}, "projects": {"type":"array","items":{"type":"object"}},
        "education": {"type":"array","items":{"type":"object"}}, "skills": {"type":"array","items":{"type":"string"}},
        "sectionOrder": {"type":"array","items":{"type":"string","enum":["summary","experience","projects","education","skills"]}}
      } },
      "Instructions": { "type": "object", "required": ["jobText","intensity"], "properties": {
        "jobText": {"type":"string"}, "intensity": {"type":"integer","minimum":1,"maximum":10},
        "protectedKeys": {"type":"array","items":{"type":"string"}}
      } }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/api/resume/profile": { "post": { "summary": "Create the caller's resume profile", "responses": { "201": { "description": "initial active document" }, "409": { "description": "profile exists or username taken" } } } },
    "/api/resume": {
      "get": { "summary": "Active document", "responses": { "200": { "description": "active document" } } },
      "put": { "summary": "Save a new version", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Document"} } } }, "responses": { "200": { "description": "new active document" } } }
    },
    "/api/resume/history": { "get": { "summary": "Superseded versions, newest first", "responses": { "200": { "description": "history" } } } },
    "/api/resume/history/{versionId}/restore": { "post": { "summary": "Make a history version active", "parameters": [{"name":"versionId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "restored document" }, "404": { "description": "version not in history" } } } },
    "/api/resume/history/{versionId}": { "delete": { "summary": "Delete a history version", "parameters": [{"name":"versionId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "204": { "description": "deleted or absent" } } } },
    "/api/resume/sections/move": { "post": { "summary": "Move a section up or down", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"index":{"type":"integer"},"direction":{"type":"string","enum":["up","down"]}}} } } }, "responses": { "200": { "description": "active document" } } } },
    "/api/resume/tailor": { "post": { "summary": "Propose a tailored document", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Instructions"} } } }, "responses": { "200": { "description": "proposal" }, "422": { "description": "malformed generator output" }, "502": { "description": "generator failure" } } } },
    "/api/resume/tailor/commit": { "post": { "summary": "Save a reviewed proposal", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Document"} } } }, "responses": { "200": { "description": "new active document" } } } },
    "/api/resume/summary": { "post": { "summary": "Draft a professional summary", "responses": { "200": { "description": "summary draft" }, "502": { "description": "generator failure" } } } },
    "/api/public/resumes/{username}": { "get": { "summary": "Published resume", "security": [], "parameters": [{"name":"username","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "active document" }, "404": { "description": "not found or not published" } } } },
    "/auth/token": { "post": { "summary": "Issue a development access token", "security": [], "responses": { "200": { "description": "token" } } } },
    "/auth/logout": { "post": { "summary": "Revoke the presented access token", "responses": { "200": { "description": "logged out" } } } },
    "/health": { "get": { "summary": "Liveness check", "security": [], "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "security": [], "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
