// Package handlers exposes the REST endpoints of the kennel API:
//   - GET  /dogs/{name}            (read-only scope)
//   - PUT  /dogs/{name}            (transactional scope)
//   - GET  /people                 (read-only scope, paginated, ETag)
//   - GET  /people/{name}          (read-only scope)
//   - POST /people                 (transactional scope, Idempotency-Key)
//   - GET  /people/{name}/dogs     (read-only scope, ETag)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. They never open
// transactions; the route's UnitOfWork middleware has already bound a
// session to the request context.
package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-kennel-backend/internal/domain"
	"github.com/tbourn/go-kennel-backend/internal/utils"
)

// DogService defines the dog operations consumed by HTTP handlers.
type DogService interface {
	// Find returns a dog; its owner is populated only when lazy loading is on.
	Find(ctx context.Context, name string) (*domain.Dog, error)
	// Create registers a dog, optionally owned by an existing person.
	Create(ctx context.Context, name, owner string) (*domain.Dog, error)
	// ListByOwner returns the dogs of an existing person.
	ListByOwner(ctx context.Context, owner string) ([]domain.Dog, error)
	// OwnerStats returns the owner's dog count and latest update.
	OwnerStats(ctx context.Context, owner string) (int64, *time.Time, error)
}

// PersonService defines the people operations consumed by HTTP handlers.
type PersonService interface {
	Get(ctx context.Context, name string) (*domain.Person, error)
	// CreateOnce inserts p unless key was already used by userID, in which
	// case the original person is returned with replayed=true.
	CreateOnce(ctx context.Context, userID, key string, p *domain.Person) (*domain.Person, bool, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Person, int64, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// Handlers groups the HTTP endpoints for dogs and people.
type Handlers struct {
	dogSvc    DogService
	personSvc PersonService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(dogSvc DogService, personSvc PersonService) *Handlers {
	return &Handlers{dogSvc: dogSvc, personSvc: personSvc}
}

// userID extracts the caller identity from the Gin context (set by upstream
// middleware), then the "X-User-ID" header, and finally "demo-user".
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)
	return utils.ClampPage(c.Query("page"), c.Query("page_size"), defaultPageSize, maxPageSize)
}

// weakETag builds W/"<parts joined by ':'>" with each part path-escaped so
// quotes in names cannot break the tag.
func weakETag(count int64, maxTS *time.Time, parts ...string) string {
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	esc := make([]string, len(parts))
	for i, p := range parts {
		esc[i] = url.PathEscape(p)
	}
	return fmt.Sprintf(`W/"%s:%d:%d"`, strings.Join(esc, ":"), count, ts)
}

// notModified sets the ETag header and reports whether If-None-Match matched.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	inm := c.GetHeader("If-None-Match")
	return inm != "" && inm == etag
}
