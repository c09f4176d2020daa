package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"evolvers-admin/internal/models"
)

// CatalogAPI lists the reference entities the course form selects from.
type CatalogAPI interface {
	ListCategories(ctx context.Context) ([]models.CatalogOption, error)
	ListLevels(ctx context.Context) ([]models.CatalogOption, error)
	ListSoftware(ctx context.Context) ([]models.CatalogOption, error)
	ListTags(ctx context.Context) ([]models.CatalogOption, error)
	ListInstructors(ctx context.Context) ([]models.CatalogOption, error)
	ListBadges(ctx context.Context) ([]models.CatalogOption, error)
}

type CatalogHandler struct {
	catalog CatalogAPI
}

func NewCatalogHandler(catalog CatalogAPI) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	h.respond(c, "categories", h.catalog.ListCategories)
}

func (h *CatalogHandler) GetLevels(c *gin.Context) {
	h.respond(c, "levels", h.catalog.ListLevels)
}

func (h *CatalogHandler) GetSoftware(c *gin.Context) {
	h.respond(c, "software", h.catalog.ListSoftware)
}

func (h *CatalogHandler) GetTags(c *gin.Context) {
	h.respond(c, "tags", h.catalog.ListTags)
}

func (h *CatalogHandler) GetInstructors(c *gin.Context) {
	h.respond(c, "instructors", h.catalog.ListInstructors)
}

func (h *CatalogHandler) GetBadges(c *gin.Context) {
	h.respond(c, "badges", h.catalog.ListBadges)
}

func (h *CatalogHandler) respond(c *gin.Context, key string, list func(ctx context.Context) ([]models.CatalogOption, error)) {
	options, err := list(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{key: options})
}
