package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/vipani/app/models"
	"github.com/shashiranjanraj/vipani/app/services"
	"github.com/shashiranjanraj/vipani/pkg/logger"
	"github.com/shashiranjanraj/vipani/pkg/middleware"
	"github.com/shashiranjanraj/vipani/pkg/response"
)

// ProductOrchestrator is the service surface the controller drives. It is
// satisfied by *services.ProductService.
type ProductOrchestrator interface {
	Create(ctx context.Context, in services.ProductInput, actorID string) (models.ProductView, error)
	Read(ctx context.Context, id string) (models.ProductView, error)
	List(ctx context.Context) ([]models.ProductView, error)
	Update(ctx context.Context, id string, in services.ProductInput, actorID string) (models.ProductView, error)
	Delete(ctx context.Context, id string, actorID string) error
}

type ProductController struct {
	service ProductOrchestrator
}

func NewProductController(service ProductOrchestrator) *ProductController {
	return &ProductController{service: service}
}

// Create handles POST /products.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	in, errs, err := parseProductInput(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	validateCreate(in, errs)
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	view, err := c.service.Create(r.Context(), in, actor)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Created(w, view)
}

// List handles GET /products.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	views, err := c.service.List(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, views)
}

// Show handles GET /products/{id}.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	view, err := c.service.Read(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, view)
}

// Update handles PUT /products/{id}.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	in, errs, err := parseProductInput(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	view, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), in, actor)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, view)
}

// Delete handles DELETE /products/{id}.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		c.fail(w, r, err)
		return
	}

	response.Message(w, "Product deleted successfully")
}

// fail maps domain errors onto HTTP statuses. Anything unrecognised is an
// internal failure: logged with detail, returned without it.
func (c *ProductController) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		response.NotFound(w, "Product not found")
	case errors.Is(err, services.ErrCategoryNotFound):
		response.NotFound(w, "Category not found")
	case errors.Is(err, services.ErrNotOwner):
		response.Forbidden(w)
	case errors.Is(err, services.ErrBlobStoreNotReady):
		response.Error(w, http.StatusServiceUnavailable, "Storage unavailable")
	default:
		logger.WithCtx(r.Context()).Error("product request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
