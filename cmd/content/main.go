package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	chandler "github.com/cooperval/content-services/internal/content/handler"
	"github.com/cooperval/content-services/internal/content/service"
	"github.com/cooperval/content-services/internal/database"
)

// Standalone content API without the auth/session stack: public reads plus
// unprotected admin routes. Useful for local frontend work and CI.
func main() {
	port := os.Getenv("CONTENT_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Prefer a Mongo-backed service when MONGODB_URI is provided.
	var svc service.Service
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI != "" {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v) — using memory-backed store", err)
			svc = service.NewMemoryService()
		} else {
			svc = service.NewMongoService(client.Database(os.Getenv("MONGODB_DATABASE")))
		}
	} else {
		svc = service.NewMemoryService()
	}

	h := chandler.New(svc, nil, nil, os.Getenv("SITE_WHATSAPP_PHONE"))
	h.Register(r, nil)
	defer h.Close()

	log.Printf("content service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
