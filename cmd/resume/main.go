// Command resume runs the résumé API alone: no identity provider, no Redis,
// no MongoDB. Profiles live in memory, or in BadgerDB when
// RESUME_BADGER_PATH is set, and callers authenticate with HMAC tokens
// signed with JWT_SECRET.
package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/resumefire/backend/go-services/internal/generator"
	"github.com/resumefire/backend/go-services/internal/oidc"
	"github.com/resumefire/backend/go-services/internal/resume/handler"
	"github.com/resumefire/backend/go-services/internal/resume/repository"
	"github.com/resumefire/backend/go-services/internal/resume/service"
	"github.com/resumefire/backend/go-services/internal/users"
	"github.com/resumefire/backend/go-services/pkg/logger"
	"github.com/resumefire/backend/go-services/pkg/middleware"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("RESUME_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	backend := "memory"
	if os.Getenv("RESUME_BADGER_PATH") != "" {
		backend = "badger"
	}
	repo, closeRepo, err := repository.Open(backend, repository.Backends{BadgerPath: os.Getenv("RESUME_BADGER_PATH")})
	if err != nil {
		logger.Fatalf("open %s store: %v", backend, err)
	}
	defer closeRepo()

	ver, err := oidc.NewHMACVerifier(os.Getenv("JWT_SECRET"))
	if err != nil {
		logger.Fatalf("JWT_SECRET is required: %v", err)
	}

	var gateway generator.Gateway = generator.Unavailable{}
	if key := os.Getenv("GENERATOR_API_KEY"); key != "" {
		gw, err := generator.NewOpenAIGateway(generator.OpenAIConfig{
			APIKey:  key,
			Model:   os.Getenv("GENERATOR_MODEL"),
			BaseURL: os.Getenv("GENERATOR_BASE_URL"),
		})
		if err != nil {
			logger.Fatalf("generator: %v", err)
		}
		gateway = gw
	}

	r := gin.New()
	r.Use(gin.Recovery())

	store := service.NewStore(repo)
	h := handler.New(store, service.NewTailor(store, gateway), users.NewService(users.NewMemoryUserRepository()))
	handler.RegisterResumeRoutes(r, h, middleware.AuthMiddleware(ver, nil))

	logger.Infof("resume service (%s store) listening on :%s", backend, port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
