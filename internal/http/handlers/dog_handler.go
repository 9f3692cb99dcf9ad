// Dog HTTP handlers.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OwnerRef names the person who owns a dog.
type OwnerRef struct {
	Name string `json:"name" example:"Coda"`
}

// PutDogRequest is the JSON payload for registering a dog.
type PutDogRequest struct {
	// Name optionally repeats the path name; it must match when present.
	Name string `json:"name" example:"Raf"`
	// Owner optionally links the dog to an existing person.
	Owner *OwnerRef `json:"owner"`
}

// GetDog godoc
// @ID          getDog
// @Summary     Get a dog
// @Description Returns a dog by name. The owner is included when lazy loading is enabled, otherwise it is null.
// @Tags        Dogs
// @Produce     json
// @Param       name  path  string  true  "Dog name"  example(Raf)
// @Success     200  {object}  domain.Dog
// @Failure     400  {object}  handlers.ErrorMessage  "Invalid name"
// @Failure     404  {object}  handlers.ErrorMessage  "Dog not found"
// @Failure     500  {object}  handlers.ErrorMessage  "Internal error"
// @Router      /dogs/{name} [get]
func (h *Handlers) GetDog(c *gin.Context) {
	d, err := h.dogSvc.Find(c.Request.Context(), c.Param("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, d)
}

// PutDog godoc
// @ID          putDog
// @Summary     Register a dog
// @Description Creates a dog under the given name. A name that is already taken, or an unknown owner, is rejected by the database and reported as a 400 constraint violation.
// @Tags        Dogs
// @Accept      json
// @Produce     json
// @Param       name  path  string                   true  "Dog name"  example(Raf)
// @Param       body  body  handlers.PutDogRequest  true  "Dog payload"
// @Success     201  {object}  domain.Dog
// @Failure     400  {object}  handlers.ErrorMessage  "Bad request or constraint violation"
// @Failure     500  {object}  handlers.ErrorMessage  "Internal error"
// @Router      /dogs/{name} [put]
func (h *Handlers) PutDog(c *gin.Context) {
	var req PutDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := c.Param("name")
	if req.Name != "" && strings.TrimSpace(req.Name) != strings.TrimSpace(name) {
		fail(c, http.StatusBadRequest, "body name does not match path")
		return
	}
	var owner string
	if req.Owner != nil {
		owner = req.Owner.Name
		if strings.TrimSpace(owner) == "" {
			fail(c, http.StatusBadRequest, "owner name required")
			return
		}
	}

	d, err := h.dogSvc.Create(c.Request.Context(), name, owner)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Location", c.Request.URL.Path)
	ok(c, http.StatusCreated, d)
}
