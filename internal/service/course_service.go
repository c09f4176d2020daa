package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"evolvers-admin/internal/draft"
	"evolvers-admin/internal/media"
	"evolvers-admin/internal/models"
	"evolvers-admin/pkg/logger"
	"evolvers-admin/pkg/validator"
)

// CourseAPI is the remote backend surface the service depends on.
type CourseAPI interface {
	CreateCourse(ctx context.Context, payload models.CoursePayload) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uint, payload models.CoursePayload) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uint) error
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	UploadCourseImage(ctx context.Context, file *models.FileSource) (string, error)
	UploadCourseCarouselMedia(ctx context.Context, file *models.FileSource) (string, string, error)
}

// CourseService orchestrates the local draft store, the media resolver and
// the remote course API. It never hands a transient file reference to the
// API client: file-bearing drafts pass through the upload step first.
type CourseService struct {
	store    *draft.Store
	api      CourseAPI
	resolver *media.Resolver
}

func NewCourseService(store *draft.Store, apiClient CourseAPI, resolver *media.Resolver) *CourseService {
	return &CourseService{
		store:    store,
		api:      apiClient,
		resolver: resolver,
	}
}

// LoadDraft returns the stored draft or a freshly created empty one.
func (s *CourseService) LoadDraft(ctx context.Context) (*models.CourseDraft, error) {
	stored, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if stored == nil {
		return models.NewCourseDraft(), nil
	}
	return stored, nil
}

// SaveDraft stamps the draft and persists it.
func (s *CourseService) SaveDraft(ctx context.Context, d *models.CourseDraft) error {
	if d == nil {
		return errors.New("draft is required")
	}
	d.UpdatedAt = time.Now().UTC()
	return s.store.Save(ctx, d)
}

func (s *CourseService) ClearDraft(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// PublishDraft uploads pending media, creates the course remotely and clears
// the local draft. Any failure before the create call aborts without
// clearing, so the user's work is not lost.
func (s *CourseService) PublishDraft(ctx context.Context, d *models.CourseDraft) (*models.Course, error) {
	payload, err := s.prepare(ctx, d)
	if err != nil {
		return nil, err
	}

	course, err := s.api.CreateCourse(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx); err != nil {
		logger.Error(err, "Failed to clear draft after publish", map[string]interface{}{
			"course_id": course.ID,
		})
	}

	return course, nil
}

// UpdateDraft pushes the draft to an existing course without touching the
// local draft: "save progress on an existing course".
func (s *CourseService) UpdateDraft(ctx context.Context, id uint, d *models.CourseDraft) (*models.Course, error) {
	payload, err := s.prepare(ctx, d)
	if err != nil {
		return nil, err
	}
	return s.api.UpdateCourse(ctx, id, payload)
}

// UpdateCourse finalizes an edit: same as UpdateDraft but clears the local
// draft on success.
func (s *CourseService) UpdateCourse(ctx context.Context, id uint, d *models.CourseDraft) (*models.Course, error) {
	course, err := s.UpdateDraft(ctx, id, d)
	if err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx); err != nil {
		logger.Error(err, "Failed to clear draft after update", map[string]interface{}{
			"course_id": id,
		})
	}

	return course, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, id uint) error {
	return s.api.DeleteCourse(ctx, id)
}

func (s *CourseService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.api.ListCourses(ctx)
}

func (s *CourseService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	return s.api.GetCourse(ctx, id)
}

// DraftFromCourse hydrates a draft from a fetched course for edit mode.
func (s *CourseService) DraftFromCourse(course *models.Course) *models.CourseDraft {
	d := models.NewCourseDraft()
	if course == nil {
		return d
	}

	d.Title = course.Title
	d.Slug = course.Slug
	d.Description = course.Description
	d.ImageURL = course.ImageURL
	d.Price = course.Price
	d.OriginalPrice = course.OriginalPrice
	d.Duration = course.Duration
	d.Published = course.Published
	d.Featured = course.Featured
	d.Downloadable = course.Downloadable
	d.CategoryID = course.CategoryID
	d.LevelID = course.LevelID
	d.SoftwareID = course.SoftwareID
	d.BadgeIDs = append(d.BadgeIDs, course.BadgeIDs...)
	d.TagIDs = append(d.TagIDs, course.TagIDs...)
	d.InstructorIDs = append(d.InstructorIDs, course.InstructorIDs...)
	d.Requirements = append(d.Requirements, course.Requirements...)
	d.Objectives = append(d.Objectives, course.Objectives...)
	d.TargetAudience = append(d.TargetAudience, course.TargetAudience...)

	for _, module := range course.Modules {
		draftModule := models.ModuleDraft{
			ID:      uuid.New().String(),
			Title:   module.Title,
			Lessons: []models.LessonDraft{},
		}
		for _, lesson := range module.Lessons {
			draftModule.Lessons = append(draftModule.Lessons, models.LessonDraft{
				ID:       uuid.New().String(),
				Title:    lesson.Title,
				Duration: lesson.Duration,
			})
		}
		d.Modules = append(d.Modules, draftModule)
	}

	for position, item := range course.Carousel {
		d.Carousel = append(d.Carousel, models.CarouselItem{
			ID:              item.ID,
			Kind:            models.MediaKind(item.Type),
			Title:           item.Title,
			Ref:             models.DurableRef(item.URL),
			ThumbRef:        models.DurableRef(item.ThumbnailURL),
			DurationSeconds: item.Duration,
			Position:        position,
		})
	}

	return d
}

// prepare resolves pending media and maps the draft to its wire payload.
func (s *CourseService) prepare(ctx context.Context, d *models.CourseDraft) (models.CoursePayload, error) {
	if d == nil {
		return models.CoursePayload{}, errors.New("draft is required")
	}

	work := d.Clone()

	if work.ImageFile != nil {
		url, err := s.api.UploadCourseImage(ctx, work.ImageFile)
		if err != nil {
			return models.CoursePayload{}, fmt.Errorf("cover image upload failed: %w", err)
		}
		work.ImageURL = url
		work.ImageFile = nil
	}

	if len(work.Carousel) > 0 {
		resolved, err := s.resolver.Resolve(ctx, work.Carousel)
		if err != nil {
			return models.CoursePayload{}, err
		}
		work.Carousel = resolved
	}

	return buildPayload(work), nil
}

// buildPayload derives the wire format: strings trimmed, zero optionals
// omitted, empty list entries filtered.
func buildPayload(d *models.CourseDraft) models.CoursePayload {
	payload := models.CoursePayload{
		Title:       cleanTitle(d.Title),
		Slug:        validator.TrimSpaces(d.Slug),
		Description: validator.SanitizeHTML(validator.TrimSpaces(d.Description)),
		ImageURL:    validator.TrimSpaces(d.ImageURL),
		Price:       d.Price,

		Published:    d.Published,
		Featured:     d.Featured,
		Downloadable: d.Downloadable,

		CategoryID: d.CategoryID,
		LevelID:    d.LevelID,

		BadgeIDs:      append([]int{}, d.BadgeIDs...),
		TagIDs:        append([]int{}, d.TagIDs...),
		InstructorIDs: append([]int{}, d.InstructorIDs...),

		Requirements:   filterEmpty(d.Requirements),
		Objectives:     filterEmpty(d.Objectives),
		TargetAudience: filterEmpty(d.TargetAudience),
	}

	if d.OriginalPrice > 0 {
		value := d.OriginalPrice
		payload.OriginalPrice = &value
	}
	if d.Duration > 0 {
		value := d.Duration
		payload.Duration = &value
	}
	if d.SoftwareID != 0 {
		value := d.SoftwareID
		payload.SoftwareID = &value
	}

	for _, module := range d.Modules {
		title := cleanTitle(module.Title)
		if title == "" {
			continue
		}
		modulePayload := models.ModulePayload{
			Title:    title,
			Position: len(payload.Modules),
		}
		for _, lesson := range module.Lessons {
			lessonTitle := cleanTitle(lesson.Title)
			if lessonTitle == "" {
				continue
			}
			modulePayload.Lessons = append(modulePayload.Lessons, models.LessonPayload{
				Title:    lessonTitle,
				Duration: validator.TrimSpaces(lesson.Duration),
				Position: len(modulePayload.Lessons),
			})
		}
		payload.Modules = append(payload.Modules, modulePayload)
	}

	for _, item := range d.Carousel {
		payload.Carousel = append(payload.Carousel, models.CarouselItemPayload{
			ID:           item.ID,
			Type:         string(item.Kind),
			Title:        cleanTitle(item.Title),
			URL:          item.Ref.URL(),
			ThumbnailURL: item.ThumbRef.URL(),
			Duration:     item.DurationSeconds,
			Position:     len(payload.Carousel),
		})
	}

	return payload
}

// cleanTitle collapses runs of whitespace in human-visible titles.
func cleanTitle(s string) string {
	return validator.TrimSpaces(validator.NormalizeSpaces(s))
}

func filterEmpty(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := validator.TrimSpaces(value)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}
