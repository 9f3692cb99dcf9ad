// People HTTP handlers.
//
// Idempotency:
// POST /people honours the Idempotency-Key header. The key and the person row
// are written in the same transaction; a retry with the same key returns the
// originally created person with `Idempotency-Replayed: true` and inserts
// nothing.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-kennel-backend/internal/domain"
	"github.com/tbourn/go-kennel-backend/internal/http/middleware"
)

// CreatePersonRequest is the JSON payload for creating a person.
type CreatePersonRequest struct {
	Name     string     `json:"name" binding:"required" example:"Coda"`
	Email    *string    `json:"email" example:"coda@example.com"`
	Birthday *time.Time `json:"birthday" example:"1990-01-02T00:00:00Z"`
}

// ListPeopleResponse wraps a page of people and pagination information.
type ListPeopleResponse struct {
	People     []domain.Person `json:"people"`
	Pagination Pagination      `json:"pagination"`
}

// ListPeople godoc
// @ID          listPeople
// @Summary     List people (paginated)
// @Description Returns a page of people ordered by name. Supports weak ETag via If-None-Match and may return 304.
// @Tags        People
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListPeopleResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorMessage "Internal error"
// @Router      /people [get]
func (h *Handlers) ListPeople(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	count, maxTS, err := h.personSvc.Stats(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	etag := weakETag(count, maxTS, "people", strconv.Itoa(page), strconv.Itoa(pageSize))
	if notModified(c, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	items, total, err := h.personSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, ListPeopleResponse{
		People:     items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetPerson godoc
// @ID          getPerson
// @Summary     Get a person
// @Tags        People
// @Produce     json
// @Param       name  path  string  true  "Person name"  example(Coda)
// @Success     200  {object}  domain.Person
// @Failure     400  {object}  handlers.ErrorMessage  "Invalid name"
// @Failure     404  {object}  handlers.ErrorMessage  "Person not found"
// @Router      /people/{name} [get]
func (h *Handlers) GetPerson(c *gin.Context) {
	p, err := h.personSvc.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, p)
}

// CreatePerson godoc
// @ID          createPerson
// @Summary     Create a person
// @Description Creates a person. Duplicate names and malformed emails are rejected by the database as 400 constraint violations. Supports Idempotency-Key for safe retries.
// @Tags        People
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body  body  handlers.CreatePersonRequest  true  "Person payload"
// @Success     201  {object}  domain.Person
// @Header      201  {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     400  {object}  handlers.ErrorMessage  "Bad request or constraint violation"
// @Failure     409  {object}  handlers.ErrorMessage  "Idempotency-Key in use"
// @Failure     500  {object}  handlers.ErrorMessage  "Internal error"
// @Router      /people [post]
func (h *Handlers) CreatePerson(c *gin.Context) {
	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	p, replayed, err := h.personSvc.CreateOnce(c.Request.Context(), userID(c), key, &domain.Person{
		Name:     req.Name,
		Email:    req.Email,
		Birthday: req.Birthday,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	c.Header("Location", c.Request.URL.Path+"/"+p.Name)
	ok(c, http.StatusCreated, p)
}

// ListPersonDogs godoc
// @ID          listPersonDogs
// @Summary     List a person's dogs
// @Description Returns every dog owned by the person. Supports weak ETag via If-None-Match and may return 304.
// @Tags        People
// @Produce     json
// @Param       name           path    string  true  "Owner name"  example(Coda)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Success     200  {array}   domain.Dog
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     404  {object}  handlers.ErrorMessage  "Person not found"
// @Router      /people/{name}/dogs [get]
func (h *Handlers) ListPersonDogs(c *gin.Context) {
	ctx := c.Request.Context()
	owner := c.Param("name")

	count, maxTS, err := h.dogSvc.OwnerStats(ctx, owner)
	if err != nil {
		_ = c.Error(err)
		return
	}
	etag := weakETag(count, maxTS, "dogs", owner)
	if count > 0 && notModified(c, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	dogs, err := h.dogSvc.ListByOwner(ctx, owner)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("ETag", etag)
	ok(c, http.StatusOK, dogs)
}
