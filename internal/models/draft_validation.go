package models

import "strings"

// ValidateDraft maps a draft to per-field error messages. Pure: the map is
// rebuilt from scratch on every call, so re-validation after a single field
// change is idempotent.
func ValidateDraft(d *CourseDraft) FieldErrors {
	errs := FieldErrors{}
	if d == nil {
		errs["draft"] = "draft is required"
		return errs
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) < 3 {
		errs["title"] = "title must be at least 3 characters"
	}

	description := strings.TrimSpace(d.Description)
	if description == "" {
		errs["description"] = "description is required"
	} else if len(description) < 10 {
		errs["description"] = "description must be at least 10 characters"
	}

	// A pending cover file satisfies the requirement; it becomes the URL at
	// publish time.
	if strings.TrimSpace(d.ImageURL) == "" && d.ImageFile == nil {
		errs["image_url"] = "cover image is required"
	}

	if d.Price <= 0 {
		errs["price"] = "price is required and must be greater than zero"
	}

	if d.CategoryID == 0 {
		errs["category_id"] = "category is required"
	}

	if d.LevelID == 0 {
		errs["level_id"] = "level is required"
	}

	if d.OriginalPrice > 0 && d.OriginalPrice < d.Price {
		errs["original_price"] = "original price must be greater than current price"
	}

	return errs
}
