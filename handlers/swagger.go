package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the content service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>cooperval-content — Swagger</title>
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

var swaggerJSON = gin.H{
	"openapi": "3.0.0",
	"info":    gin.H{"title": "cooperval-content", "version": "v0.1.0"},
	"paths": gin.H{
		"/auth/login": gin.H{
			"post": gin.H{"summary": "Admin login (password or auth-code mode)", "responses": gin.H{"200": gin.H{"description": "tokens + user"}}},
		},
		"/auth/refresh": gin.H{
			"post": gin.H{"summary": "Exchange a refresh token for a new access token", "responses": gin.H{"200": gin.H{"description": "access token"}}},
		},
		"/auth/logout": gin.H{
			"post": gin.H{"summary": "Invalidate the refresh session and blacklist the access token", "responses": gin.H{"200": gin.H{"description": "logged out"}}},
		},
		"/api/news": gin.H{
			"get": gin.H{"summary": "All news, newest first (optional ?category=)", "responses": gin.H{"200": gin.H{"description": "news list"}}},
		},
		"/api/news/recent": gin.H{
			"get": gin.H{"summary": "Latest five news", "responses": gin.H{"200": gin.H{"description": "news list"}}},
		},
		"/api/news/slug/{slug}": gin.H{
			"get": gin.H{"summary": "One article by slug", "responses": gin.H{"200": gin.H{"description": "article"}, "404": gin.H{"description": "not found"}}},
		},
		"/api/promotions": gin.H{
			"get": gin.H{"summary": "All promotions with derived discount and days remaining (optional ?category=)", "responses": gin.H{"200": gin.H{"description": "promotion list"}}},
		},
		"/api/promotions/active": gin.H{
			"get": gin.H{"summary": "Promotions whose validity window has not passed", "responses": gin.H{"200": gin.H{"description": "promotion list"}}},
		},
		"/api/promotions/categories": gin.H{
			"get": gin.H{"summary": "Distinct promotion categories", "responses": gin.H{"200": gin.H{"description": "category list"}}},
		},
		"/api/promotions/{id}/whatsapp": gin.H{
			"get": gin.H{"summary": "Outbound WhatsApp deep link for a promotion", "responses": gin.H{"200": gin.H{"description": "url"}}},
		},
		"/api/admin/news": gin.H{
			"get":  gin.H{"summary": "Admin list with ?search= and ?category= filtering", "responses": gin.H{"200": gin.H{"description": "news list"}}},
			"post": gin.H{"summary": "Create an article (multipart form, optional images)", "responses": gin.H{"201": gin.H{"description": "saved"}}},
		},
		"/api/admin/news/{id}": gin.H{
			"patch":  gin.H{"summary": "Edit an article (slug recomputed from the title)", "responses": gin.H{"200": gin.H{"description": "saved"}}},
			"delete": gin.H{"summary": "Request deletion (pending confirmation)", "responses": gin.H{"202": gin.H{"description": "pending"}}},
		},
		"/api/admin/news/{id}/confirm": gin.H{
			"post": gin.H{"summary": "Confirm a requested deletion", "responses": gin.H{"204": gin.H{"description": "deleted"}}},
		},
		"/api/admin/promotions": gin.H{
			"get":  gin.H{"summary": "Admin list with ?search= and ?category= filtering", "responses": gin.H{"200": gin.H{"description": "promotion list"}}},
			"post": gin.H{"summary": "Create a promotion (multipart form, optional image)", "responses": gin.H{"201": gin.H{"description": "saved"}}},
		},
		"/api/admin/promotions/{id}": gin.H{
			"patch":  gin.H{"summary": "Edit a promotion (slug recomputed from the product name)", "responses": gin.H{"200": gin.H{"description": "saved"}}},
			"delete": gin.H{"summary": "Request deletion (pending confirmation)", "responses": gin.H{"202": gin.H{"description": "pending"}}},
		},
		"/api/admin/promotions/{id}/confirm": gin.H{
			"post": gin.H{"summary": "Confirm a requested deletion", "responses": gin.H{"204": gin.H{"description": "deleted"}}},
		},
		"/api/admin/assets": gin.H{
			"post": gin.H{"summary": "Upload an image asset, returns its reference id", "responses": gin.H{"201": gin.H{"description": "assetId"}}},
		},
	},
}
