package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/resumefire/backend/go-services/handlers"
	"github.com/resumefire/backend/go-services/internal/config"
	"github.com/resumefire/backend/go-services/internal/database"
	"github.com/resumefire/backend/go-services/internal/generator"
	"github.com/resumefire/backend/go-services/internal/oidc"
	"github.com/resumefire/backend/go-services/internal/resume/handler"
	"github.com/resumefire/backend/go-services/internal/resume/repository"
	"github.com/resumefire/backend/go-services/internal/resume/service"
	"github.com/resumefire/backend/go-services/internal/sessions"
	"github.com/resumefire/backend/go-services/internal/storage"
	"github.com/resumefire/backend/go-services/internal/users"
	"github.com/resumefire/backend/go-services/pkg/logger"
	"github.com/resumefire/backend/go-services/pkg/metrics"
	"github.com/resumefire/backend/go-services/pkg/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetFormat(os.Getenv("LOG_FORMAT"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: store=%s keycloak=%v mongo=%v redis=%v generator=%v",
		cfg.Store.Backend, cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Addr() != "", cfg.Generator.APIKey != "")

	ctx := context.Background()

	var redisClient *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis: %s", addr)
		}
	}

	var mongoClient *mongo.Client
	var mongoDB *mongo.Database
	if cfg.MongoDB.URI != "" {
		mongoClient, err = database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			if cfg.Store.Backend == config.StoreMongo {
				logger.Fatalf("resume store needs MongoDB: %v", err)
			}
			logger.Warnf("continuing without MongoDB: %v", err)
		} else {
			defer func() { _ = mongoClient.Disconnect(context.Background()) }()
			mongoDB = mongoClient.Database(cfg.MongoDB.Database)
		}
	}

	repo, closeRepo, err := repository.Open(cfg.Store.Backend, repository.Backends{
		Mongo:       mongoDB,
		Collection:  cfg.Store.Collection,
		Redis:       redisClient,
		RedisPrefix: cfg.Store.RedisPrefix,
		BadgerPath:  cfg.Store.BadgerPath,
	})
	if err != nil {
		logger.Fatalf("failed to open resume store: %v", err)
	}
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Errorf("close resume store: %v", err)
		}
	}()

	var opts []service.Option
	if mc := storage.LoadMinIOConfig(); mc.Enabled() {
		archive, err := storage.NewMinIOArchiveFromConfig(ctx, mc)
		if err != nil {
			logger.Warnf("eviction archive disabled: %v", err)
		} else {
			opts = append(opts, service.WithArchiver(archive))
			logger.Infof("archiving evicted versions to MinIO bucket %s", mc.Bucket)
		}
	}
	store := service.NewStore(repo, opts...)

	var gateway generator.Gateway = generator.Unavailable{}
	if cfg.Generator.APIKey != "" {
		gw, err := generator.NewOpenAIGateway(generator.OpenAIConfig{
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			BaseURL: cfg.Generator.BaseURL,
			Timeout: cfg.Generator.Timeout,
		})
		if err != nil {
			logger.Warnf("generator disabled: %v", err)
		} else {
			gateway = gw
		}
	} else {
		logger.Warnf("GENERATOR_API_KEY not set; AI features are disabled")
	}

	var userSvc *users.Service
	if mongoDB != nil {
		userSvc = users.NewService(users.NewMongoUserRepository(mongoDB.Collection("users")))
	} else {
		userSvc = users.NewService(users.NewMemoryUserRepository())
	}

	verifier := newVerifier(ctx, cfg)
	var blacklist *sessions.Blacklist
	if redisClient != nil {
		blacklist = sessions.NewBlacklist(redisClient, "")
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"store": true,
			"auth":  verifier != nil,
			"redis": true,
		}
		if redisClient != nil {
			deps["redis"] = redisClient.Ping(c.Request.Context()).Err() == nil
		}
		if mongoClient != nil {
			deps["mongo"] = mongoClient.Ping(c.Request.Context(), nil) == nil
			if cfg.Store.Backend == config.StoreMongo {
				deps["store"] = deps["mongo"]
			}
		}
		if cfg.Store.Backend == config.StoreRedis {
			deps["store"] = deps["redis"]
		}
		status, code := "ready", http.StatusOK
		for _, ok := range deps {
			if !ok {
				status, code = "not_ready", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if verifier == nil {
		logger.Warnf("no token verifier configured (KEYCLOAK_*, JWT_SECRET or ALLOW_INSECURE_TOKEN); resume API not mounted")
	} else {
		auth := middleware.AuthMiddleware(verifier, blacklist)
		mws := []gin.HandlerFunc{auth}
		if cfg.RateLimit.Enabled {
			mws = append(mws, rateLimiter(cfg, redisClient))
		}
		h := handler.New(store, service.NewTailor(store, gateway), userSvc)
		handler.RegisterResumeRoutes(r, h, mws...)
		handlers.NewAuthHandler(cfg, userSvc, blacklist).Register(r, auth)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownError := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Infof("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Infof("starting resume service on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server failed: %v", err)
	}
	if err := <-shutdownError; err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
	logger.Infof("server stopped")
}

// newVerifier prefers Keycloak, then the insecure integration mode, then
// HMAC dev tokens.
func newVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if issuer := cfg.Keycloak.Issuer(); issuer != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if cfg.JWT.AllowInsecure {
		logger.Warnf("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier()
	}
	if cfg.JWT.Secret != "" {
		ver, err := oidc.NewHMACVerifier(cfg.JWT.Secret)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize HMAC verifier: %v", err)
	}
	return nil
}

func rateLimiter(cfg *config.Config, client *redis.Client) gin.HandlerFunc {
	if cfg.RateLimit.UseRedis && client != nil {
		win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
		return middleware.RedisRateLimitMiddleware(client, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
	}
	return middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// cors is the permissive dev policy the editor frontend relies on.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
