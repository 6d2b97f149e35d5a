// Package httpapi exposes the inventory, store and employee endpoints over gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-flavor-inventory/ingest"
	"github.com/goliatone/go-flavor-inventory/internal/apperr"
	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/query"
	"github.com/goliatone/go-flavor-inventory/service"
)

// UploadField is the multipart field carrying the CSV file.
const UploadField = "csvFile"

// TotalCountHeader carries the number of matches across all pages.
const TotalCountHeader = "X-Total-Count"

// Importer runs CSV uploads.
type Importer interface {
	Import(ctx context.Context, upload ingest.Upload) (*model.ImportOutcome, error)
}

// InventoryService manages inventory records.
type InventoryService interface {
	List(ctx context.Context, p query.Params) ([]model.InventoryView, int, error)
	Get(ctx context.Context, id string) (model.InventoryView, error)
	Create(ctx context.Context, in service.InventoryInput) (*model.InventoryRecord, error)
	Update(ctx context.Context, id string, in service.InventoryInput) error
	Delete(ctx context.Context, id string) error
}

// EntityService manages stores or employees.
type EntityService[T model.Named] interface {
	Kind() string
	List(ctx context.Context, page query.Page) ([]T, int, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, in service.EntityInput) (T, error)
	Update(ctx context.Context, id string, in service.EntityInput) error
	Delete(ctx context.Context, id string) error
}

// InventoryHandlers serves /inventory.
type InventoryHandlers struct {
	Importer       Importer
	Inventory      InventoryService
	MaxUploadBytes int64
}

// Upload handles POST /inventory/upload.
func (h *InventoryHandlers) Upload(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	header, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, apperr.InvalidInput("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		abortWithError(c, apperr.InvalidInput("multipart field %q with a .csv file is required", UploadField))
		return
	}

	file, err := header.Open()
	if err != nil {
		abortWithError(c, apperr.InvalidInput("cannot read upload: %v", err))
		return
	}
	defer file.Close()

	outcome, err := h.Importer.Import(c.Request.Context(), ingest.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// List handles GET /inventory.
func (h *InventoryHandlers) List(c *gin.Context) {
	params, err := query.ParseParams(c.Request.URL.Query())
	if err != nil {
		abortWithError(c, err)
		return
	}

	views, total, err := h.Inventory.List(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header(TotalCountHeader, strconv.Itoa(total))
	c.JSON(http.StatusOK, views)
}

// Get handles GET /inventory/:id.
func (h *InventoryHandlers) Get(c *gin.Context) {
	view, err := h.Inventory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Create handles POST /inventory.
func (h *InventoryHandlers) Create(c *gin.Context) {
	var in service.InventoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, apperr.InvalidInput("invalid body: %v", err))
		return
	}

	record, err := h.Inventory.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Location", "/inventory/"+record.ID.String())
	c.JSON(http.StatusCreated, record)
}

// Update handles PUT /inventory/:id.
func (h *InventoryHandlers) Update(c *gin.Context) {
	var in service.InventoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, apperr.InvalidInput("invalid body: %v", err))
		return
	}

	if err := h.Inventory.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /inventory/:id.
func (h *InventoryHandlers) Delete(c *gin.Context) {
	if err := h.Inventory.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EntityHandlers serves /stores or /employees.
type EntityHandlers[T model.Named] struct {
	Service EntityService[T]
	Base    string
}

// List handles the cached paginated listing.
func (h *EntityHandlers[T]) List(c *gin.Context) {
	page, err := query.ParsePage(c.Request.URL.Query())
	if err != nil {
		abortWithError(c, err)
		return
	}

	records, total, err := h.Service.List(c.Request.Context(), page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header(TotalCountHeader, strconv.Itoa(total))
	c.JSON(http.StatusOK, records)
}

// Get handles GET /<base>/:id.
func (h *EntityHandlers[T]) Get(c *gin.Context) {
	record, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Create handles POST /<base>.
func (h *EntityHandlers[T]) Create(c *gin.Context) {
	var in service.EntityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, apperr.InvalidInput("invalid body: %v", err))
		return
	}

	record, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Location", h.Base+"/"+record.RecordID().String())
	c.JSON(http.StatusCreated, record)
}

// Update handles PUT /<base>/:id.
func (h *EntityHandlers[T]) Update(c *gin.Context) {
	var in service.EntityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, apperr.InvalidInput("invalid body: %v", err))
		return
	}

	if err := h.Service.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /<base>/:id.
func (h *EntityHandlers[T]) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
