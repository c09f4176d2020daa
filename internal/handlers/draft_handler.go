package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"evolvers-admin/internal/controller"
	"evolvers-admin/internal/middleware"
	"evolvers-admin/internal/models"
	"evolvers-admin/pkg/validator"
)

// DraftHandler exposes the course authoring form over HTTP: reading the
// working draft, patching fields, attaching media files and submitting.
type DraftHandler struct {
	form *controller.CourseForm

	maxUploadSize     int64
	maxVideoThumbSize int64
}

func NewDraftHandler(form *controller.CourseForm, maxUploadSize, maxVideoThumbSize int64) *DraftHandler {
	return &DraftHandler{
		form:              form,
		maxUploadSize:     maxUploadSize,
		maxVideoThumbSize: maxVideoThumbSize,
	}
}

func (h *DraftHandler) Get(c *gin.Context) {
	draft, fieldErrors, state := h.form.Draft()
	c.JSON(http.StatusOK, gin.H{
		"draft":  draft,
		"errors": fieldErrors,
		"state":  state,
	})
}

func (h *DraftHandler) Patch(c *gin.Context) {
	var patch controller.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fieldErrors, err := h.form.Apply(c.Request.Context(), patch)
	if err != nil {
		if errors.Is(err, controller.ErrSubmitInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"errors": fieldErrors, "valid": fieldErrors.Valid()})
}

// UploadCover attaches a pending cover image file to the draft. The file is
// held in memory until publish uploads it.
func (h *DraftHandler) UploadCover(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	source, err := h.readFile(file, h.maxUploadSize, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	middleware.RecordUploadBytes("cover", int64(len(source.Data)))

	fieldErrors := h.form.SetCoverFile(c.Request.Context(), source)
	c.JSON(http.StatusOK, gin.H{"errors": fieldErrors, "valid": fieldErrors.Valid()})
}

// AddCarouselItem accepts either an image file, or a video URL with an
// optional thumbnail file, and appends the item to the draft's carousel.
func (h *DraftHandler) AddCarouselItem(c *gin.Context) {
	var req struct {
		Type string `form:"type" binding:"required,media_kind"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be image or video"})
		return
	}
	kind := models.MediaKind(req.Type)

	item := models.CarouselItem{
		Kind:  kind,
		Title: validator.SanitizeString(c.PostForm("title")),
	}

	switch kind {
	case models.MediaKindImage:
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		source, err := h.readFile(file, h.maxUploadSize, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		middleware.RecordUploadBytes("carousel_image", int64(len(source.Data)))
		item.Ref = models.PendingRef(source)

	case models.MediaKindVideo:
		url := c.PostForm("url")
		if !validator.IsDurableURL(url) || !validator.ValidateURL(url) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "video url must be an http(s) address"})
			return
		}
		item.Ref = models.DurableRef(url)

		if duration := c.PostForm("duration"); duration != "" {
			seconds, err := strconv.Atoi(duration)
			if err != nil || seconds < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be a non-negative number of seconds"})
				return
			}
			item.DurationSeconds = seconds
		}

		if thumb, err := c.FormFile("thumbnail"); err == nil {
			source, err := h.readFile(thumb, h.maxVideoThumbSize, true)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			middleware.RecordUploadBytes("video_thumbnail", int64(len(source.Data)))
			item.ThumbRef = models.PendingRef(source)
		} else if thumbURL := c.PostForm("thumbnail_url"); thumbURL != "" {
			if !validator.IsDurableURL(thumbURL) || !validator.ValidateURL(thumbURL) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "thumbnail url must be an http(s) address"})
				return
			}
			item.ThumbRef = models.DurableRef(thumbURL)
		}
	}

	h.form.AddCarouselItem(c.Request.Context(), item)

	draft, fieldErrors, _ := h.form.Draft()
	c.JSON(http.StatusOK, gin.H{"carousel": draft.Carousel, "errors": fieldErrors})
}

// Submit publishes a new course or pushes the edit in progress.
func (h *DraftHandler) Submit(c *gin.Context) {
	result, err := h.form.Submit(c.Request.Context())
	if err != nil {
		if errors.Is(err, controller.ErrSubmitInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	switch result.Kind {
	case controller.ResultValidation:
		status = http.StatusUnprocessableEntity
	case controller.ResultAPI:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"result": result})
}

func (h *DraftHandler) Discard(c *gin.Context) {
	if err := h.form.Discard(c.Request.Context()); err != nil {
		if errors.Is(err, controller.ErrSubmitInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft discarded"})
}

// Edit loads an existing course into the form.
func (h *DraftHandler) Edit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	if err := h.form.Edit(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	draft, fieldErrors, state := h.form.Draft()
	c.JSON(http.StatusOK, gin.H{
		"draft":  draft,
		"errors": fieldErrors,
		"state":  state,
	})
}

func (h *DraftHandler) readFile(header *multipart.FileHeader, maxSize int64, image bool) (*models.FileSource, error) {
	if !validator.ValidateFileSize(header.Size, maxSize) {
		return nil, errors.New("file exceeds the maximum allowed size")
	}

	contentType := header.Header.Get("Content-Type")
	if image {
		if !validator.ValidateImageExtension(header.Filename) {
			return nil, errors.New("unsupported image file extension")
		}
		if contentType != "" && !validator.ValidateImageContentType(contentType) {
			return nil, errors.New("unsupported image content type")
		}
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, errors.New("file exceeds the maximum allowed size")
	}

	return &models.FileSource{
		Name:        validator.SanitizeFilename(header.Filename),
		ContentType: contentType,
		Data:        data,
	}, nil
}
