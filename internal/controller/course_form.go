package controller

import (
	"context"
	"errors"
	"sync"

	"evolvers-admin/internal/models"
	"evolvers-admin/internal/service"
	"evolvers-admin/pkg/logger"
)

// ErrSubmitInFlight is returned when a mutation arrives while a submit is
// already running.
var ErrSubmitInFlight = errors.New("a submit is already in progress")

// FormState tracks where the course form is in its lifecycle.
type FormState string

const (
	StateClean      FormState = "clean"
	StateEditing    FormState = "editing"
	StateSubmitting FormState = "submitting"
	StateError      FormState = "error"
)

// ResultKind classifies a submit outcome.
type ResultKind string

const (
	ResultOK         ResultKind = "ok"
	ResultValidation ResultKind = "validation"
	ResultAPI        ResultKind = "api"
)

// SubmitResult is what a submit attempt produced: the created or updated
// course on success, field errors on validation failure, or a message when
// the backend rejected the request.
type SubmitResult struct {
	OK      bool               `json:"ok"`
	Kind    ResultKind         `json:"kind"`
	Errors  models.FieldErrors `json:"errors,omitempty"`
	Message string             `json:"message,omitempty"`
	Course  *models.Course     `json:"course,omitempty"`
}

// DraftPatch is a partial update to the working draft. Nil fields are left
// untouched; slices replace wholesale.
type DraftPatch struct {
	Title         *string  `json:"title,omitempty" binding:"omitempty,no_html"`
	Slug          *string  `json:"slug,omitempty" binding:"omitempty,slug"`
	Description   *string  `json:"description,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`

	Published    *bool `json:"published,omitempty"`
	Featured     *bool `json:"featured,omitempty"`
	Downloadable *bool `json:"downloadable,omitempty"`

	CategoryID *int `json:"category_id,omitempty"`
	LevelID    *int `json:"level_id,omitempty"`
	SoftwareID *int `json:"software_id,omitempty"`

	BadgeIDs      *[]int `json:"badge_ids,omitempty"`
	TagIDs        *[]int `json:"tag_ids,omitempty"`
	InstructorIDs *[]int `json:"instructor_ids,omitempty"`

	Requirements   *[]string `json:"requirements,omitempty"`
	Objectives     *[]string `json:"objectives,omitempty"`
	TargetAudience *[]string `json:"target_audience,omitempty"`

	Modules  *[]models.ModuleDraft  `json:"modules,omitempty"`
	Carousel *[]models.CarouselItem `json:"carousel,omitempty"`
}

// CourseForm owns the working draft for one authoring session. All access
// goes through its mutex so handler goroutines can share it.
type CourseForm struct {
	mu sync.Mutex

	service *service.CourseService

	draft  *models.CourseDraft
	state  FormState
	errors models.FieldErrors

	// editingID is the remote course being edited, 0 for a new course.
	editingID uint
}

func NewCourseForm(svc *service.CourseService) *CourseForm {
	return &CourseForm{
		service: svc,
		draft:   models.NewCourseDraft(),
		state:   StateClean,
		errors:  models.FieldErrors{},
	}
}

// Resume loads any stored draft into the form.
func (f *CourseForm) Resume(ctx context.Context) error {
	draft, err := f.service.LoadDraft(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = draft
	f.errors = models.ValidateDraft(draft)
	f.state = StateClean
	f.editingID = 0
	return nil
}

// Edit replaces the working draft with one hydrated from an existing course.
func (f *CourseForm) Edit(ctx context.Context, id uint) error {
	course, err := f.service.GetCourse(ctx, id)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = f.service.DraftFromCourse(course)
	f.errors = models.ValidateDraft(f.draft)
	f.state = StateClean
	f.editingID = id
	return nil
}

// Draft returns a copy of the working draft with the current field errors.
func (f *CourseForm) Draft() (*models.CourseDraft, models.FieldErrors, FormState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := models.FieldErrors{}
	for field, message := range f.errors {
		errs[field] = message
	}
	return f.draft.Clone(), errs, f.state
}

// Apply merges a patch into the draft, revalidates, and autosaves when the
// draft is valid. Field errors for an invalid draft are returned but the
// draft itself is kept so the user can keep typing.
func (f *CourseForm) Apply(ctx context.Context, patch DraftPatch) (models.FieldErrors, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return nil, ErrSubmitInFlight
	}

	applyPatch(f.draft, patch)
	f.mutatedLocked(ctx)

	errs := models.FieldErrors{}
	for field, message := range f.errors {
		errs[field] = message
	}
	return errs, nil
}

// SetCoverFile attaches a pending cover image to the draft.
func (f *CourseForm) SetCoverFile(ctx context.Context, file *models.FileSource) models.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.ImageFile = file
	f.mutatedLocked(ctx)
	return f.errors
}

// AddCarouselItem appends a media item to the draft's carousel.
func (f *CourseForm) AddCarouselItem(ctx context.Context, item models.CarouselItem) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item.Position = len(f.draft.Carousel)
	f.draft.Carousel = append(f.draft.Carousel, item)
	f.mutatedLocked(ctx)
}

// mutatedLocked revalidates after a draft mutation and autosaves when the
// draft is valid. The stored copy never carries file handles.
func (f *CourseForm) mutatedLocked(ctx context.Context) {
	f.state = StateEditing
	f.errors = models.ValidateDraft(f.draft)

	if f.errors.Valid() {
		if err := f.service.SaveDraft(ctx, f.draft); err != nil {
			logger.Error(err, "Draft autosave failed", map[string]interface{}{
				"draft_id": f.draft.ID,
			})
		}
	}
}

// Persist writes the working draft to the store even when it is invalid.
// Called when the session ends out from under an authoring session, so
// half-finished edits that never qualified for autosave still survive.
func (f *CourseForm) Persist(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	if f.state == StateClean {
		return nil
	}
	return f.service.SaveDraft(ctx, f.draft)
}

// Submit publishes a new course or updates the one being edited. Exactly one
// submit may be in flight; concurrent calls fail fast with ErrSubmitInFlight.
func (f *CourseForm) Submit(ctx context.Context) (*SubmitResult, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	f.errors = models.ValidateDraft(f.draft)
	if !f.errors.Valid() {
		result := &SubmitResult{
			Kind:   ResultValidation,
			Errors: f.errors,
		}
		// The draft stays editable; only a backend rejection is an error state.
		f.state = StateEditing
		f.mu.Unlock()
		return result, nil
	}

	f.state = StateSubmitting
	working := f.draft.Clone()
	editingID := f.editingID
	f.mu.Unlock()

	var course *models.Course
	var err error
	if editingID == 0 {
		course, err = f.service.PublishDraft(ctx, working)
	} else {
		course, err = f.service.UpdateCourse(ctx, editingID, working)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = StateError
		return &SubmitResult{
			Kind:    ResultAPI,
			Message: err.Error(),
		}, nil
	}

	f.draft = models.NewCourseDraft()
	f.errors = models.FieldErrors{}
	f.state = StateClean
	f.editingID = 0

	return &SubmitResult{
		OK:     true,
		Kind:   ResultOK,
		Course: course,
	}, nil
}

// Discard throws away the working draft and its stored copy.
func (f *CourseForm) Discard(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return ErrSubmitInFlight
	}

	if err := f.service.ClearDraft(ctx); err != nil {
		return err
	}
	f.draft = models.NewCourseDraft()
	f.errors = models.FieldErrors{}
	f.state = StateClean
	f.editingID = 0
	return nil
}

func applyPatch(d *models.CourseDraft, patch DraftPatch) {
	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if patch.Slug != nil {
		d.Slug = *patch.Slug
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		d.ImageURL = *patch.ImageURL
	}
	if patch.Price != nil {
		d.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		d.OriginalPrice = *patch.OriginalPrice
	}
	if patch.Duration != nil {
		d.Duration = *patch.Duration
	}
	if patch.Published != nil {
		d.Published = *patch.Published
	}
	if patch.Featured != nil {
		d.Featured = *patch.Featured
	}
	if patch.Downloadable != nil {
		d.Downloadable = *patch.Downloadable
	}
	if patch.CategoryID != nil {
		d.CategoryID = *patch.CategoryID
	}
	if patch.LevelID != nil {
		d.LevelID = *patch.LevelID
	}
	if patch.SoftwareID != nil {
		d.SoftwareID = *patch.SoftwareID
	}
	if patch.BadgeIDs != nil {
		d.BadgeIDs = append([]int{}, (*patch.BadgeIDs)...)
	}
	if patch.TagIDs != nil {
		d.TagIDs = append([]int{}, (*patch.TagIDs)...)
	}
	if patch.InstructorIDs != nil {
		d.InstructorIDs = append([]int{}, (*patch.InstructorIDs)...)
	}
	if patch.Requirements != nil {
		d.Requirements = append([]string{}, (*patch.Requirements)...)
	}
	if patch.Objectives != nil {
		d.Objectives = append([]string{}, (*patch.Objectives)...)
	}
	if patch.TargetAudience != nil {
		d.TargetAudience = append([]string{}, (*patch.TargetAudience)...)
	}
	if patch.Modules != nil {
		d.Modules = append([]models.ModuleDraft{}, (*patch.Modules)...)
	}
	if patch.Carousel != nil {
		d.Carousel = append([]models.CarouselItem{}, (*patch.Carousel)...)
		for i := range d.Carousel {
			d.Carousel[i].Position = i
		}
	}
}
