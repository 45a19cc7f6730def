package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/sanjitgh/authorization-server-side/internal/auth"
	"github.com/sanjitgh/authorization-server-side/internal/config"
	"github.com/sanjitgh/authorization-server-side/internal/database"
	"github.com/sanjitgh/authorization-server-side/internal/events"
	"github.com/sanjitgh/authorization-server-side/internal/handlers"
	"github.com/sanjitgh/authorization-server-side/internal/logger"
	"github.com/sanjitgh/authorization-server-side/internal/middleware"
	redisclient "github.com/sanjitgh/authorization-server-side/internal/redis"
	"github.com/sanjitgh/authorization-server-side/internal/service"
	"github.com/sanjitgh/authorization-server-side/internal/storage"
)

func main() {
	log := logger.New("auth-service")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open user store: %v", err)
	}
	defer store.Close(ctx)

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		if cfg.IsProduction() {
			log.Fatal("JWT_SECRET must be set in production")
		}
		jwtSecret = "your-secret-key-change-in-production"
		log.Warn("JWT_SECRET not set, using default (insecure for production)")
	}

	jwtManager := auth.NewJWTManager(jwtSecret, cfg.Auth.SessionTTL, cfg.Auth.RememberTTL)
	sessions := service.NewSessionService(store, jwtManager)

	// Redis backs the audit stream and the rate limiter. Both are optional:
	// without it the service still authenticates, it just skips auditing and
	// per-IP throttling.
	var producer *events.Producer
	var limiter *middleware.RateLimiter
	if redisConn, err := redisclient.NewClient(ctx, cfg.Redis); err != nil {
		log.Warn("Redis unavailable, auditing and rate limiting disabled: %v", err)
	} else {
		defer redisConn.Close()
		producer = events.NewProducer(redisConn.GetClient(), cfg.Redis.StreamName)
		limiter = middleware.NewRateLimiter(redisConn.GetClient(), cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	handler := handlers.NewSessionHandler(sessions, producer, cfg)

	// Only the credential endpoints are throttled; userinfo and logout are
	// cheap and already gated by the cookie.
	limit := func(h http.HandlerFunc) http.HandlerFunc {
		if limiter == nil {
			return h
		}
		return limiter.Middleware(h).ServeHTTP
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/signup", requireMethod(http.MethodPost, limit(handler.Signup)))
	mux.HandleFunc("/api/signin", requireMethod(http.MethodPost, limit(handler.Signin)))
	mux.HandleFunc("/api/userinfo", requireMethod(http.MethodGet, handler.UserInfo))
	mux.HandleFunc("/api/logout", requireMethod(http.MethodPost, handler.Logout))
	mux.HandleFunc("/", handler.Liveness)

	// Cookie auth over CORS needs credentialed requests, so origins must be
	// listed explicitly rather than wildcarded.
	root := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}).Handler(mux)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: root,
	}

	go func() {
		log.Info("Server is runing on port: %s (mode: %s)", cfg.Server.Port, cfg.Server.Mode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auth service...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error: %v", err)
	}
	log.Info("Auth service stopped")
}

// openStore picks the storage backend. Mongo is the default; Postgres and
// the in-memory store exist for deployments and local runs respectively.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.UserStore, error) {
	switch backend := os.Getenv("STORE_BACKEND"); backend {
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		store := storage.NewPostgresStorage(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		log.Warn("Using in-memory store, data will not survive restarts")
		return storage.NewMemoryStorage(), nil
	default:
		store, err := storage.NewMongoStorage(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
}

func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}
