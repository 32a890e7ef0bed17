//	@title			Picstash API
//	@version		1.0
//	@description	Picture hosting backend — quota-bounded spaces, moderated uploads, cached listings.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/picstash/service/internal/config"
	"github.com/picstash/service/internal/db"
	appMiddleware "github.com/picstash/service/internal/middleware"
	"github.com/picstash/service/internal/picture"
	"github.com/picstash/service/internal/space"
	"github.com/picstash/service/internal/storage"

	_ "github.com/picstash/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStore(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// The list cache degrades to local-only when Redis is unreachable.
	redisClient, err := picture.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Printf("redis unavailable, list cache runs local-only: %v", err)
	}
	var listCache *picture.ListCache
	if redisClient != nil {
		listCache = picture.NewListCache(cfg.CacheLocalCapacity, cfg.CacheLocalTTL,
			redisClient, cfg.CacheRedisTTLBase, cfg.CacheRedisTTLJitter)
	} else {
		listCache = picture.NewListCache(cfg.CacheLocalCapacity, cfg.CacheLocalTTL,
			nil, cfg.CacheRedisTTLBase, cfg.CacheRedisTTLJitter)
	}

	// Wire dependencies: repository → service → handler
	spaceRepo := space.NewRepository(pool)
	spaceSvc := space.NewService(spaceRepo)
	spaceHandler := space.NewHandler(spaceSvc)

	pictureRepo := picture.NewRepository(pool)
	uploader := picture.NewUploader(store)
	cleaner := picture.NewCleaner(pictureRepo, store)
	defer cleaner.Close()

	pictureSvc := picture.NewService(pictureRepo, spaceRepo, uploader, cleaner, listCache, picture.Options{
		PageSizeMax:     cfg.ListPageSizeMax,
		IngestSearchURL: cfg.IngestSearchURL,
		IngestMaxCount:  cfg.IngestMaxCount,
		URLMaxBytes:     cfg.UploadMaxURLBytes,
	})
	pictureHandler := picture.NewHandler(pictureSvc, cfg.UploadMaxFileBytes, cfg.UploadMaxURLBytes)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))

		r.Route("/spaces", func(r chi.Router) {
			r.Post("/", spaceHandler.Create)
			r.Get("/me", spaceHandler.GetMine)
			r.Get("/{id}", spaceHandler.Get)
		})

		r.Route("/pictures", func(r chi.Router) {
			r.Post("/", pictureHandler.Upload)
			r.Post("/url", pictureHandler.UploadByURL)
			r.Post("/list", pictureHandler.List)
			r.Post("/list/cached", pictureHandler.ListCached)
			r.Get("/tag-categories", pictureHandler.TagCategories)
			r.Get("/{id}", pictureHandler.Get)
			r.Patch("/{id}", pictureHandler.Edit)
			r.Delete("/{id}", pictureHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireAdmin)
				r.Post("/{id}/review", pictureHandler.Review)
				r.Post("/batch", pictureHandler.IngestBatch)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
