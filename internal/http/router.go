// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, rate limiting and the
// per-route database unit of work.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Every API route declares its unit-of-work descriptor next to its path
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-kennel-backend/docs"
	"github.com/tbourn/go-kennel-backend/internal/config"
	"github.com/tbourn/go-kennel-backend/internal/domain"
	"github.com/tbourn/go-kennel-backend/internal/http/handlers"
	"github.com/tbourn/go-kennel-backend/internal/http/middleware"
	"github.com/tbourn/go-kennel-backend/internal/repo"
	"github.com/tbourn/go-kennel-backend/internal/services"
	"github.com/tbourn/go-kennel-backend/internal/uow"
)

// Unit-of-work descriptors of the API routes.
var (
	readScope  = uow.ReadOnly()
	writeScope = uow.Default()
	// Dog creation defers deferrable constraints to commit where the
	// dialect supports it.
	dogCreateScope = uow.Descriptor{Transactional: true, FlushMode: uow.FlushCommit}
	// The people listing repeats the same stats, count and page queries on
	// every request.
	peopleListScope = uow.Descriptor{ReadOnly: true, Transactional: true, CacheMode: uow.CachePrepared}
)

// dogRepoShim adapts the repository free functions to the services.DogRepo
// interface expected by the DogService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type dogRepoShim struct{}

// GetDog proxies repo.GetDog.
func (dogRepoShim) GetDog(ctx context.Context, db *gorm.DB, name string) (*domain.Dog, error) {
	return repo.GetDog(ctx, db, name)
}

// CreateDog proxies repo.CreateDog.
func (dogRepoShim) CreateDog(ctx context.Context, db *gorm.DB, d *domain.Dog) error {
	return repo.CreateDog(ctx, db, d)
}

// ListDogsByOwner proxies repo.ListDogsByOwner.
func (dogRepoShim) ListDogsByOwner(ctx context.Context, db *gorm.DB, owner string) ([]domain.Dog, error) {
	return repo.ListDogsByOwner(ctx, db, owner)
}

// OwnerDogsStats proxies repo.OwnerDogsStats (ETag support).
func (dogRepoShim) OwnerDogsStats(ctx context.Context, db *gorm.DB, owner string) (int64, *time.Time, error) {
	return repo.OwnerDogsStats(ctx, db, owner)
}

// GetPerson proxies repo.GetPerson (owner follow-up fetch).
func (dogRepoShim) GetPerson(ctx context.Context, db *gorm.DB, name string) (*domain.Person, error) {
	return repo.GetPerson(ctx, db, name)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It fails only when the unit-of-work provider cannot be installed
// on db.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
//  11. Errors: maps recorded errors once the route's unit of work is released
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) error {
	r.HandleMethodNotAllowed = true

	provider, err := uow.NewGormProvider(db)
	if err != nil {
		return err
	}
	uowMgr := uow.NewManager(provider)
	apiBase := cfg.APIBasePath // e.g. "/api/v1"

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.AccessLog(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Response compression (skip the scrape endpoint)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scopes: map[string]string{
				middleware.IdempotencyRoute(http.MethodPost, joinPath(apiBase, "/people")): services.IdempotencyScope,
			},
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			_, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			switch {
			case errors.Is(err, repo.ErrNotFound):
				return false, nil
			case err != nil:
				return false, err
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByCaller())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	corsHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "If-None-Match", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Location", "Idempotency-Replayed"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 11) Error translation, outside every unit of work
	r.Use(handlers.Errors())

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Liveness + database validation query
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := repo.Ping(ctx, db, cfg.DB.ValidationQuery); err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("health check failed")
			handlers.Fail(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = apiBase
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	dogSvc := services.NewDogService(db, dogRepoShim{}, cfg.DB.LazyLoading)
	personSvc := services.NewPersonService(db, cfg.IdempotencyTTL)
	h := handlers.New(dogSvc, personSvc)

	scope := func(d uow.Descriptor) gin.HandlerFunc { return middleware.UnitOfWork(uowMgr, d) }
	readOnly := scope(readScope)

	// Public API
	api := groupWithPrefix(r, apiBase)
	{
		// Dogs
		api.GET("/dogs/:name", readOnly, h.GetDog)
		api.PUT("/dogs/:name", scope(dogCreateScope), h.PutDog)

		// People
		api.GET("/people", scope(peopleListScope), h.ListPeople)
		api.POST("/people", scope(writeScope), h.CreatePerson)
		api.GET("/people/:name", readOnly, h.GetPerson)
		api.GET("/people/:name/dogs", readOnly, h.ListPersonDogs)
	}
	return nil
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// joinPath returns the full route path of p under prefix, as c.FullPath()
// reports it.
func joinPath(prefix, p string) string {
	if prefix == "" || prefix == "/" {
		return p
	}
	return prefix + p
}
