package api

import (
	"context"
	"fmt"

	"evolvers-admin/internal/models"
)

// Catalog reads back the reference entities the course form selects from.
// Full CRUD for these resources lives in the backend admin; this side only
// needs the lists.

func (c *Client) ListCategories(ctx context.Context) ([]models.CatalogOption, error) {
	return c.listOptions(ctx, "/categories")
}

func (c *Client) ListLevels(ctx context.Context) ([]models.CatalogOption, error) {
	return c.listOptions(ctx, "/levels")
}

func (c *Client) ListSoftware(ctx context.Context) ([]models.CatalogOption, error) {
	return c.listOptions(ctx, "/software")
}

func (c *Client) ListTags(ctx context.Context) ([]models.CatalogOption, error) {
	return c.listOptions(ctx, "/tags")
}

func (c *Client) ListInstructors(ctx context.Context) ([]models.CatalogOption, error) {
	return c.listOptions(ctx, "/instructors")
}

func (c *Client) ListBadges(ctx context.Context) ([]models.CatalogOption, error) {
	return c.listOptions(ctx, "/badges")
}

func (c *Client) listOptions(ctx context.Context, path string) ([]models.CatalogOption, error) {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	var options []models.CatalogOption
	if err := c.decode(resp, &options); err != nil {
		return nil, err
	}
	return options, nil
}
