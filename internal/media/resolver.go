package media

import (
	"context"
	"errors"
	"fmt"

	"evolvers-admin/internal/models"
)

var (
	// ErrMissingFileHandle means an item references transient media but no
	// file is attached. User/programmer error, never silently recovered.
	ErrMissingFileHandle = errors.New("media item has no attached file")

	// ErrInvalidVideoURL means a video item's own URL is not a durable
	// HTTP(S) link. Videos are never uploaded as blobs, only their
	// thumbnails are.
	ErrInvalidVideoURL = errors.New("video url must be a durable HTTP(S) link")

	// ErrUnresolvedMedia means an item still holds a transient reference
	// after resolution. Defensive invariant check.
	ErrUnresolvedMedia = errors.New("media item is still unresolved after upload")
)

// Uploader is the network collaborator that turns bytes into durable URLs.
type Uploader interface {
	UploadCourseCarouselMedia(ctx context.Context, file *models.FileSource) (url string, thumbnailURL string, err error)
}

// Resolver reconciles a course's media carousel: after Resolve, every item's
// URL and thumbnail URL are durable HTTP(S) URLs.
type Resolver struct {
	uploader Uploader
}

func NewResolver(uploader Uploader) *Resolver {
	return &Resolver{uploader: uploader}
}

// Resolve uploads any pending media, preserving item order and all non-media
// fields. Failure of any single upload aborts the whole operation; no
// partial-success state is returned.
func (r *Resolver) Resolve(ctx context.Context, items []models.CarouselItem) ([]models.CarouselItem, error) {
	if r == nil || r.uploader == nil {
		return nil, errors.New("media resolver is not initialised")
	}

	resolved := make([]models.CarouselItem, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case models.MediaKindImage:
			out, err := r.resolveImage(ctx, item)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, out)
		case models.MediaKindVideo:
			out, err := r.resolveVideo(ctx, item)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, out)
		default:
			return nil, fmt.Errorf("media item %q: unknown type %q", item.Title, item.Kind)
		}
	}

	// Invariant check: nothing transient may survive resolution.
	for _, item := range resolved {
		if !item.Ref.IsDurable() || !item.ThumbRef.IsDurable() {
			return nil, fmt.Errorf("media item %q: %w", item.Title, ErrUnresolvedMedia)
		}
	}

	return resolved, nil
}

func (r *Resolver) resolveImage(ctx context.Context, item models.CarouselItem) (models.CarouselItem, error) {
	if item.Ref.IsDurable() && item.ThumbRef.IsDurable() {
		item.Ref = item.Ref.WithoutFile()
		item.ThumbRef = item.ThumbRef.WithoutFile()
		return item, nil
	}

	file := item.Ref.File()
	if file == nil {
		return models.CarouselItem{}, fmt.Errorf("media item %q: %w", item.Title, ErrMissingFileHandle)
	}

	url, _, err := r.uploader.UploadCourseCarouselMedia(ctx, file)
	if err != nil {
		return models.CarouselItem{}, fmt.Errorf("media item %q: upload failed: %w", item.Title, err)
	}

	// An image's thumbnail is itself.
	item.Ref = models.DurableRef(url)
	item.ThumbRef = models.DurableRef(url)
	return item, nil
}

func (r *Resolver) resolveVideo(ctx context.Context, item models.CarouselItem) (models.CarouselItem, error) {
	if !item.Ref.IsDurable() {
		return models.CarouselItem{}, fmt.Errorf("media item %q: %w", item.Title, ErrInvalidVideoURL)
	}
	item.Ref = item.Ref.WithoutFile()

	if item.ThumbRef.IsDurable() {
		item.ThumbRef = item.ThumbRef.WithoutFile()
		return item, nil
	}

	file := item.ThumbRef.File()
	if file == nil {
		return models.CarouselItem{}, fmt.Errorf("media item %q: %w", item.Title, ErrMissingFileHandle)
	}

	url, _, err := r.uploader.UploadCourseCarouselMedia(ctx, file)
	if err != nil {
		return models.CarouselItem{}, fmt.Errorf("media item %q: thumbnail upload failed: %w", item.Title, err)
	}

	item.ThumbRef = models.DurableRef(url)
	return item, nil
}
